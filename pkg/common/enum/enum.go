package enum

type StoreBackend string
type AllowlistSource string
type KVStoreType string
type BloomBackend string

const (
	StoreBackendPostgres StoreBackend = "postgres"
	StoreBackendKV       StoreBackend = "kv"
	StoreBackendMemory   StoreBackend = "memory"
)

const (
	AllowlistSourceDB     AllowlistSource = "db"
	AllowlistSourceKV     AllowlistSource = "kv"
	AllowlistSourceStatic AllowlistSource = "static"
)

const (
	KVStoreTypeBadger KVStoreType = "badger"
	KVStoreTypeConsul KVStoreType = "consul"
)

const (
	BloomBackendNone     BloomBackend = "none"
	BloomBackendInMemory BloomBackend = "in_memory"
	BloomBackendRedis    BloomBackend = "redis"
)
