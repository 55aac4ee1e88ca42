package config

import (
	"time"

	"github.com/yusufsyaifudin/fcmpush/pkg/webclient"
)

// HTTPServer struct for HTTP Transport configuration
type HTTPServer struct {
	Port           int      `yaml:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// Transport is a configuration for the inbound transports.
type Transport struct {
	HTTP HTTPServer `yaml:"http"`
}

type GoSqlDb struct {
	Debug bool   `yaml:"debug"`
	DSN   string `yaml:"dsn"` // Data Source Name

	MaxOpenConns    int           `yaml:"maxOpenConns" validate:"min=0"`
	MaxIdleConns    int           `yaml:"maxIdleConns" validate:"min=0"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

type DatabaseResource struct {
	Disable bool   `yaml:"disable"`
	Driver  string `yaml:"driver" validate:"omitempty,oneof=postgres"`

	Postgres GoSqlDb `yaml:"postgres"`
}

// DatabaseResources maps a db label to its connection.
type DatabaseResources map[string]DatabaseResource

type RedisResource struct {
	Mode       string   `yaml:"mode" validate:"required,oneof=single sentinel cluster"`
	Address    []string `yaml:"address" validate:"required,min=1,dive,required"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	DB         int      `yaml:"db"`
	MasterName string   `yaml:"masterName"`
}

// RedisResources maps a redis label to its connection.
type RedisResources map[string]RedisResource

// Firebase holds both sides of the gateway: the service account used by the server
// and the web app config served to browsers.
type Firebase struct {
	// Disabled replaces the FCM client with a noop one. Useful on local machines.
	Disabled bool `yaml:"disabled"`

	CredentialsFile string `yaml:"credentialsFile"`
	CredentialsJSON string `yaml:"credentialsJSON"`

	Web              webclient.FirebaseConfig `yaml:"web"`
	VapidKey         string                   `yaml:"vapidKey"`
	Origins          webclient.Origins        `yaml:"origins"`
	ServiceWorkerURL string                   `yaml:"serviceWorkerURL"`
	ActionMaps       []*webclient.ActionMap   `yaml:"actionMaps"`
	Topics           []string                 `yaml:"topics" validate:"dive,required"`
	WithLogging      bool                     `yaml:"withLogging"`
}

type TokenRepoCache struct {
	// Type is empty when cache is disabled.
	Type       string        `yaml:"type" validate:"omitempty,oneof=inmemory redis"`
	RedisLabel string        `yaml:"redisLabel" validate:"required_if=Type redis"`
	Expiry     time.Duration `yaml:"expiry"`
	Prefix     string        `yaml:"prefix" validate:"omitempty,alphanum"`
}

type TokenRepo struct {
	Driver     string         `yaml:"driver" validate:"required,oneof=postgres redis"`
	DBLabel    string         `yaml:"dbLabel" validate:"required_if=Driver postgres"`
	RedisLabel string         `yaml:"redisLabel" validate:"required_if=Driver redis"`
	KeyPrefix  string         `yaml:"keyPrefix" validate:"omitempty,alphanum"`
	Cache      TokenRepoCache `yaml:"cache"`
}

// SendWorker sizes the pool that sends multicast chunks to a user's tokens.
type SendWorker struct {
	Num    int `yaml:"num" validate:"min=0"`
	MaxJob int `yaml:"maxJob" validate:"min=0"`
}

type Tracing struct {
	// JaegerEndpoint is the collector endpoint. Tracing is disabled when empty.
	JaegerEndpoint string `yaml:"jaegerEndpoint" validate:"omitempty,url"`
	Environment    string `yaml:"environment"`
}

// Config contains application config
type Config struct {
	Transport         Transport         `yaml:"transport"`
	Firebase          Firebase          `yaml:"firebase"`
	DatabaseResources DatabaseResources `yaml:"databaseResources" validate:"dive"`
	Redis             RedisResources    `yaml:"redis" validate:"dive"`
	TokenRepo         TokenRepo         `yaml:"tokenRepo"`
	SendWorker        SendWorker        `yaml:"sendWorker"`
	Tracing           Tracing           `yaml:"tracing"`

	// MachineID seeds the sonyflake generator, zero means derive it from the private IP.
	MachineID uint16 `yaml:"machineID"`
}
