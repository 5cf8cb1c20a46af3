/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
Each bucket stores models of a single type and may maintain
secondary indexes over them. Sequences hand out unique,
ordered identifiers.
*/
package orm
