package store

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/shaverlee/gearbox/config"
	"github.com/shaverlee/gearbox/core/errors"
)

type fakeStore struct {
	pingErr error
	closed  bool
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }
func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("sqlalchemy", &fakeStore{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register("sqlalchemy", &fakeStore{}); !errors.IsCode(err, errors.CodeAlreadyExists) {
		t.Fatalf("duplicate Register: got %v, want AlreadyExists", err)
	}
	if err := r.Register("", &fakeStore{}); !errors.IsCode(err, errors.CodeInvalidArgument) {
		t.Fatalf("empty name: got %v, want InvalidArgument", err)
	}
	if err := r.Register("ming", nil); !errors.IsCode(err, errors.CodeInvalidArgument) {
		t.Fatalf("nil store: got %v, want InvalidArgument", err)
	}
}

func TestRegistryPing(t *testing.T) {
	r := NewRegistry()
	healthy := &fakeStore{}
	broken := &fakeStore{pingErr: stderrors.New("connection refused")}

	r.Register("healthy", healthy)
	if err := r.Ping(context.Background()); err != nil {
		t.Fatalf("Ping with healthy stores: %v", err)
	}

	r.Register("broken", broken)
	err := r.Ping(context.Background())
	if !errors.IsCode(err, errors.CodeUnavailable) {
		t.Fatalf("Ping with broken store: got %v, want Unavailable", err)
	}
}

func TestRegistryCloseEmptiesRegistry(t *testing.T) {
	r := NewRegistry()
	a := &fakeStore{}
	b := &fakeStore{}
	r.Register("a", a)
	r.Register("b", b)

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !a.closed || !b.closed {
		t.Fatal("Close should close every store")
	}
	if len(r.List()) != 0 {
		t.Fatalf("registry not emptied: %v", r.List())
	}
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("sqlalchemy", &fakeStore{})

	if err := r.Unregister("sqlalchemy"); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if err := r.Unregister("sqlalchemy"); !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("Unregister absent: got %v, want NotFound", err)
	}
}

func TestSQLOptionsFromConfig(t *testing.T) {
	conf := config.NewStore(map[string]any{
		"sqlalchemy.url":          "postgresql://localhost/blog",
		"sqlalchemy.pool_size":    25,
		"sqlalchemy.pool_recycle": "30m",
	})

	opts, err := SQLOptionsFromConfig(conf)
	if err != nil {
		t.Fatalf("SQLOptionsFromConfig: %v", err)
	}
	if opts.Driver != "postgres" {
		t.Fatalf("driver = %q, want postgres (inferred)", opts.Driver)
	}
	if opts.PoolSize != 25 {
		t.Fatalf("pool size = %d", opts.PoolSize)
	}
	if opts.PoolRecycle != 30*time.Minute {
		t.Fatalf("pool recycle = %v", opts.PoolRecycle)
	}
}

func TestSQLOptionsDriverInference(t *testing.T) {
	cases := map[string]string{
		"mysql://root@localhost/app": "mysql",
		"postgres://localhost/app":   "postgres",
		"sqlite:///tmp/app.db":       "sqlite",
	}
	for url, want := range cases {
		conf := config.NewStore(map[string]any{"sqlalchemy.url": url})
		opts, err := SQLOptionsFromConfig(conf)
		if err != nil {
			t.Fatalf("url %q: %v", url, err)
		}
		if opts.Driver != want {
			t.Fatalf("url %q: driver = %q, want %q", url, opts.Driver, want)
		}
	}
}

func TestSQLOptionsUnknownScheme(t *testing.T) {
	conf := config.NewStore(map[string]any{"sqlalchemy.url": "oracle://localhost/app"})
	_, err := SQLOptionsFromConfig(conf)
	if !errors.IsCode(err, errors.CodeInvalidArgument) {
		t.Fatalf("unknown scheme: got %v, want InvalidArgument", err)
	}
}

func TestSQLOptionsMissingURL(t *testing.T) {
	conf := config.NewStore(nil)
	if _, err := SQLOptionsFromConfig(conf); err == nil {
		t.Fatal("missing sqlalchemy.url must fail validation")
	}
}

func TestMongoOptionsFromConfig(t *testing.T) {
	conf := config.NewStore(map[string]any{
		"ming.url": "mongodb://localhost:27017/blog",
		"ming.connection.max_pool_size": 50,
	})

	opts, err := MongoOptionsFromConfig(conf)
	if err != nil {
		t.Fatalf("MongoOptionsFromConfig: %v", err)
	}
	if opts.Database != "blog" {
		t.Fatalf("database = %q, want blog (from URL path)", opts.Database)
	}
	if opts.MaxPoolSize != 50 {
		t.Fatalf("max pool size = %d", opts.MaxPoolSize)
	}
}

func TestMongoOptionsExplicitDatabaseWins(t *testing.T) {
	conf := config.NewStore(map[string]any{
		"ming.url": "mongodb://localhost:27017/ignored",
		"ming.db":  "content",
	})

	opts, err := MongoOptionsFromConfig(conf)
	if err != nil {
		t.Fatalf("MongoOptionsFromConfig: %v", err)
	}
	if opts.Database != "content" {
		t.Fatalf("database = %q, want content", opts.Database)
	}
}

func TestMongoOptionsMissingDatabase(t *testing.T) {
	conf := config.NewStore(map[string]any{"ming.url": "mongodb://localhost:27017"})
	_, err := MongoOptionsFromConfig(conf)
	if !errors.IsCode(err, errors.CodeInvalidArgument) {
		t.Fatalf("missing database: got %v, want InvalidArgument", err)
	}
}

func TestOpenSQLRejectsBadDriver(t *testing.T) {
	_, err := OpenSQL(SQLOptions{URL: "db://x", Driver: "oracle"}, nil)
	if !errors.IsCode(err, errors.CodeInvalidArgument) {
		t.Fatalf("bad driver: got %v, want InvalidArgument", err)
	}
}
