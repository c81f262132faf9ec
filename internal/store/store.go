// Package store is the local persistence and template collaborator. Documents
// and templates are JSON values in a badger key-value store, compressed with
// zstd since drawing snapshots make them large.
package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
)

var ErrNotFound = errors.New("not found")

const (
	prefixDocument = "document:"
	prefixTemplate = "template:"
)

type Config struct {
	Path     string
	InMemory bool
	Logger   *logrus.Logger
}

type Store struct {
	config Config
	log    *logrus.Logger
	db     *badger.DB
	enc    *zstd.Encoder
	dec    *zstd.Decoder
}

func Open(config Config) (*Store, error) {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if !config.InMemory && config.Path == "" {
		return nil, errors.New("store: path is required unless in_memory is set")
	}

	opts := badger.DefaultOptions(config.Path)
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger")
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create zstd encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, errors.Wrap(err, "create zstd decoder")
	}

	config.Logger.WithFields(logrus.Fields{
		"path":      config.Path,
		"in_memory": config.InMemory,
	}).Info("Store opened")
	return &Store{config: config, log: config.Logger, db: db, enc: enc, dec: dec}, nil
}

func (s *Store) Close() error {
	s.dec.Close()
	if err := s.enc.Close(); err != nil {
		s.log.WithError(err).Warn("Error closing zstd encoder")
	}
	return s.db.Close()
}

func (s *Store) put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "marshal %s", key)
	}
	value := s.enc.EncodeAll(raw, nil)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return errors.Wrapf(err, "write %s", key)
	}
	s.log.WithFields(logrus.Fields{
		"key":        key,
		"raw":        len(raw),
		"compressed": len(value),
	}).Debug("Value written")
	return nil
}

func (s *Store) get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.Wrap(ErrNotFound, key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", key)
	}
	raw, err := s.dec.DecodeAll(value, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress %s", key)
	}
	return raw, nil
}

// scan calls fn with the decompressed value of every key under prefix.
func (s *Store) scan(prefix string, fn func(key string, raw []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			raw, err := s.dec.DecodeAll(value, nil)
			if err != nil {
				return errors.Wrapf(err, "decompress %s", item.Key())
			}
			if err := fn(string(item.Key()), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

// Save validates doc and writes it. A document without an id gets one.
func (s *Store) Save(ctx context.Context, doc *material.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if err := s.put(prefixDocument+doc.ID, doc); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"document": doc.ID,
		"elements": doc.Len(),
	}).Info("Document saved")
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (*material.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := s.get(prefixDocument + id)
	if err != nil {
		return nil, err
	}
	doc, err := material.Decode(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "document %s", id)
	}
	if doc.ID == "" {
		doc.ID = id
	}
	return doc, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefixDocument + id))
	})
	return errors.Wrapf(err, "delete document %s", id)
}

// Summary is the listing view of a stored document.
type Summary struct {
	ID      string
	Title   string
	Subject string
	Status  material.Status
}

// List returns every stored document, ordered by title.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Summary
	err := s.scan(prefixDocument, func(key string, raw []byte) error {
		var meta material.Metadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			s.log.WithFields(logrus.Fields{"key": key}).Warnf("Skipping unreadable document: %v", err)
			return nil
		}
		if meta.ID == "" {
			meta.ID = key[len(prefixDocument):]
		}
		out = append(out, Summary{ID: meta.ID, Title: meta.Title, Subject: meta.Subject, Status: meta.Status})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list documents")
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *Store) PutTemplate(ctx context.Context, t material.Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.ID == "" {
		return errors.New("template id is required")
	}
	return s.put(prefixTemplate+t.ID, t)
}

func (s *Store) Template(ctx context.Context, id string) (material.Template, error) {
	if err := ctx.Err(); err != nil {
		return material.Template{}, err
	}
	raw, err := s.get(prefixTemplate + id)
	if err != nil {
		return material.Template{}, err
	}
	var t material.Template
	if err := json.Unmarshal(raw, &t); err != nil {
		return material.Template{}, errors.Wrapf(err, "template %s", id)
	}
	return t, nil
}

// Templates lists every stored template, ordered by id.
func (s *Store) Templates(ctx context.Context) ([]material.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []material.Template
	err := s.scan(prefixTemplate, func(key string, raw []byte) error {
		var t material.Template
		if err := json.Unmarshal(raw, &t); err != nil {
			s.log.WithFields(logrus.Fields{"key": key}).Warnf("Skipping unreadable template: %v", err)
			return nil
		}
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list templates")
	}
	return out, nil
}
