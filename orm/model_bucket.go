package orm

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

// Model is implemented by any entity that can be stored using ModelBucket.
// Models are serialized with protobuf, so every persisted field must carry
// a protobuf struct tag.
type Model interface {
	proto.Message
	Validate() error
}

// ModelSlicePtr represents a pointer to a slice of models. Think of it as
// *[]Model. Because of Go type system, using []Model type would not work
// for us. Instead we use a placeholder type and the validation is done
// during the runtime.
type ModelSlicePtr interface{}

// ModelBucket stores models of a single type under a name prefix and keeps
// its secondary indexes up to date.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db vault.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists and
	// ErrNotFound if it does not.
	Has(db vault.ReadOnlyKVStore, key []byte) error

	// Put validates and saves given model in the database, updating all
	// indexes.
	Put(db vault.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db vault.KVStore, key []byte) error

	// ByIndex returns all entities that are stored under given index
	// value, ordered by primary key. Loaded models are appended to the
	// slice that dest points to. Primary keys are returned in the same
	// order.
	ByIndex(db vault.ReadOnlyKVStore, indexName string, key []byte, dest ModelSlicePtr) ([][]byte, error)

	// Iterate returns an iterator over all entities in the bucket in
	// ascending primary key order.
	Iterate(db vault.ReadOnlyKVStore) (ModelIterator, error)
}

// ModelIterator loads stored models one by one.
type ModelIterator interface {
	// LoadNext loads the next model into dest and returns its primary
	// key. ErrIteratorDone is returned when there are no more entities.
	LoadNext(dest Model) ([]byte, error)
	Release()
}

// ModelBucketOption is used to configure a new bucket.
type ModelBucketOption func(*modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using the value returned by the
// indexer function. A unique index rejects two entities sharing a value.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic(fmt.Sprintf("index %q registered twice", name))
		}
		mb.indexes[name] = newIndex(mb.name, name, indexer, unique)
	}
}

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// NewModelBucket returns a ModelBucket instance storing entities of the
// same type as the given prototype. Bucket name must be 3 to 10 lowercase
// letters.
func NewModelBucket(name string, proto Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("invalid bucket name: %q", name))
	}
	mb := &modelBucket{
		name:    name,
		prefix:  []byte(name + ":"),
		model:   reflect.TypeOf(proto),
		indexes: make(map[string]*index),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	indexes map[string]*index
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte(nil), mb.prefix...), key...)
}

func (mb *modelBucket) One(db vault.ReadOnlyKVStore, key []byte, dest Model) error {
	if !mb.model.AssignableTo(reflect.TypeOf(dest)) {
		return errors.Wrapf(errors.ErrType, "%s cannot be represented as %T", mb.model, dest)
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot get from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := proto.Unmarshal(raw, dest); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	return nil
}

func (mb *modelBucket) Has(db vault.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot query the database")
	}
	if !ok {
		return errors.ErrNotFound
	}
	return nil
}

func (mb *modelBucket) Put(db vault.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if reflect.TypeOf(m) != mb.model {
		return errors.Wrapf(errors.ErrType, "cannot store %T in %s bucket", m, mb.name)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	prev, err := mb.load(db, key)
	if err != nil {
		return err
	}
	for _, ix := range mb.indexes {
		if err := ix.Update(db, key, prev, m); err != nil {
			return errors.Wrapf(err, "index %s", ix.name)
		}
	}
	raw, err := proto.Marshal(m)
	if err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db vault.KVStore, key []byte) error {
	prev, err := mb.load(db, key)
	if err != nil {
		return err
	}
	if prev == nil {
		return errors.ErrNotFound
	}
	for _, ix := range mb.indexes {
		if err := ix.Update(db, key, prev, nil); err != nil {
			return errors.Wrapf(err, "index %s", ix.name)
		}
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(err, "cannot delete from the database")
	}
	return nil
}

// load returns the stored model or nil if it does not exist.
func (mb *modelBucket) load(db vault.ReadOnlyKVStore, key []byte) (Model, error) {
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return nil, errors.Wrap(err, "cannot get from the database")
	}
	if raw == nil {
		return nil, nil
	}
	m := mb.newModel()
	if err := proto.Unmarshal(raw, m); err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return m, nil
}

func (mb *modelBucket) newModel() Model {
	return reflect.New(mb.model.Elem()).Interface().(Model)
}

func (mb *modelBucket) ByIndex(db vault.ReadOnlyKVStore, indexName string, key []byte, dest ModelSlicePtr) ([][]byte, error) {
	ix, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidIndex, "name %q", indexName)
	}

	slice := reflect.ValueOf(dest)
	if slice.Kind() != reflect.Ptr || slice.Elem().Kind() != reflect.Slice {
		return nil, errors.Wrapf(errors.ErrType, "destination must be a pointer to a slice, got %T", dest)
	}
	elem := slice.Elem().Type().Elem()
	if !mb.model.AssignableTo(elem) && !mb.model.Elem().AssignableTo(elem) {
		return nil, errors.Wrapf(errors.ErrType, "%s cannot be represented as %s", mb.model, elem)
	}

	keys, err := ix.Keys(db, key)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		m, err := mb.load(db, k)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, errors.Wrapf(errors.ErrDatabase, "index %s points to missing entity %x", ix.name, k)
		}
		v := reflect.ValueOf(m)
		if elem.Kind() != reflect.Ptr {
			v = v.Elem()
		}
		slice.Elem().Set(reflect.Append(slice.Elem(), v))
	}
	return keys, nil
}

func (mb *modelBucket) Iterate(db vault.ReadOnlyKVStore) (ModelIterator, error) {
	end := append([]byte(nil), mb.prefix...)
	// ':' + 1 bounds all keys with the bucket prefix.
	end[len(end)-1]++
	it, err := db.Iterator(mb.prefix, end)
	if err != nil {
		return nil, errors.Wrap(err, "bucket iterator")
	}
	return &modelIterator{it: it, prefix: mb.prefix}, nil
}

type modelIterator struct {
	it     vault.Iterator
	prefix []byte
}

func (i *modelIterator) LoadNext(dest Model) ([]byte, error) {
	if !i.it.Valid() {
		return nil, errors.ErrIteratorDone
	}
	key := i.it.Key()[len(i.prefix):]
	if err := proto.Unmarshal(i.it.Value(), dest); err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	if err := i.it.Next(); err != nil {
		return nil, err
	}
	return key, nil
}

func (i *modelIterator) Release() {
	i.it.Close()
}
