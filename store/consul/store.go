package consul

import (
	"context"
	"encoding/json"

	"github.com/hashicorp/consul/api"

	"github.com/elmortem/assetfinder/store"
)

// ConsulStore persists the cache as one value in HashiCorp Consul KV.
//
// Limitations:
// - Consul KV has a 512KB limit per value
// - Best suited for small to mid-sized projects; larger caches belong
//   in the sqlite, postgres or s3 stores
type ConsulStore struct {
	kv  *api.KV
	key string

	config *ConsulStoreConfig
}

// ConsulStoreConfig contains configuration options for the Consul store.
type ConsulStoreConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Key under which the cache is stored (default: "assetfinder/cache")
	Key string
}

// NewConsulStore creates a Consul-backed store.
func NewConsulStore(config *ConsulStoreConfig) (*ConsulStore, error) {
	if config == nil {
		config = &ConsulStoreConfig{}
	}

	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	if config.Key == "" {
		config.Key = "assetfinder/cache"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return &ConsulStore{
		kv:     client.KV(),
		key:    config.Key,
		config: config,
	}, nil
}

// Name returns the identifier name defined for this store.
func (*ConsulStore) Name() string {
	return "consul"
}

// Open is part of the lifecycle behaviour and gets called before the first use.
func (cs *ConsulStore) Open(ctx context.Context) error {
	// Nothing to initialize - Consul handles connections
	return nil
}

// Close is part of the lifecycle behaviour and gets called when the store is no longer needed.
func (cs *ConsulStore) Close(ctx context.Context) error {
	// Nothing to clean up - Consul client is stateless
	return nil
}

func (cs *ConsulStore) Load(ctx context.Context) (*store.Container, error) {
	pair, _, err := cs.kv.Get(cs.key, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, store.ErrNotExist
	}

	var c store.Container
	if err := json.Unmarshal(pair.Value, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (cs *ConsulStore) Save(ctx context.Context, c *store.Container) error {
	blob, err := json.Marshal(c)
	if err != nil {
		return err
	}

	_, err = cs.kv.Put(&api.KVPair{Key: cs.key, Value: blob},
		(&api.WriteOptions{}).WithContext(ctx))
	return err
}
