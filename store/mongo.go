package store

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shaverlee/gearbox/config"
	"github.com/shaverlee/gearbox/core/errors"
	"github.com/shaverlee/gearbox/core/log"
)

// MongoOptions holds document storage settings, bound from the ming.*
// configuration group.
type MongoOptions struct {
	URL            string        `config:"ming.url" validate:"required"`
	Database       string        `config:"ming.db"`
	ConnectTimeout time.Duration `config:"ming.connection.connect_timeout" default:"10s"`
	MaxPoolSize    int           `config:"ming.connection.max_pool_size" default:"100"`
}

// MongoOptionsFromConfig binds MongoOptions from the resolved configuration.
// When ming.db is not set, the database name is taken from the URL path.
func MongoOptionsFromConfig(conf *config.Store) (MongoOptions, error) {
	var opts MongoOptions
	if err := conf.Bind(&opts); err != nil {
		return MongoOptions{}, errors.Wrap(errors.CodeInvalidArgument, "store.mongo.options", err)
	}
	if opts.Database == "" {
		opts.Database = databaseFromURL(opts.URL)
	}
	if opts.Database == "" {
		return MongoOptions{}, errors.New(errors.CodeInvalidArgument, "ming.db is required when ming.url carries no database")
	}
	return opts, nil
}

func databaseFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.Trim(parsed.Path, "/")
}

// MongoStore is a MongoDB-backed document store.
type MongoStore struct {
	client   *mongo.Client
	database string
	logger   log.Logger
}

// OpenMongo connects a MongoDB client for the given options.
func OpenMongo(ctx context.Context, opts MongoOptions, logger log.Logger) (*MongoStore, error) {
	if opts.URL == "" {
		return nil, errors.New(errors.CodeInvalidArgument, "ming.url is required")
	}
	if logger == nil {
		logger = log.Discard()
	}

	clientOpts := options.Client().
		ApplyURI(opts.URL).
		SetConnectTimeout(opts.ConnectTimeout)
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(uint64(opts.MaxPoolSize))
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnavailable, "store.mongo.open", err)
	}

	return &MongoStore{client: client, database: opts.Database, logger: logger}, nil
}

// Database returns the configured database handle.
func (s *MongoStore) Database() *mongo.Database {
	return s.client.Database(s.database)
}

// Client returns the underlying client.
func (s *MongoStore) Client() *mongo.Client {
	return s.client
}

// Ping checks connectivity to the primary.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.Wrap(errors.CodeUnavailable, "store.mongo.ping", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
