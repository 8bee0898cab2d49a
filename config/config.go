package config

import (
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config for puppr-server and puppr-client.
type Config struct {
	Server    ServerCfg    // 服务端配置
	Client    ClientCfg    // 客户端配置
	Database  DatabaseCfg  // 数据库连接配置
	Publisher PublisherCfg // 外部事件总线配置
	Subject   SubjectCfg   // 事件分发配置
	Logger    LoggerCfg    // 日志配置
}

// ServerCfg path of the server config.
type ServerCfg struct {
	Address           string        `valid:"required"`
	EventsPath        string        `valid:"required"`
	WriteTimeout      time.Duration `valid:"required"`
	PingInterval      time.Duration
	PongTimeout       time.Duration
	ReadLimit         int64
	RefreshConnection time.Duration `valid:"required"`
	ShutdownTimeout   time.Duration
}

// ClientCfg path of the client config.
type ClientCfg struct {
	URL              string `valid:"required"`
	APIURL           string
	Names            []string // 订阅的事件名称, 为空订阅全部
	HandshakeTimeout time.Duration
	DialTimeout      time.Duration // 初次连接最长重试时间
}

// PublisherCfg path of the external event bus config.
type PublisherCfg struct {
	Type        string // "" 不启用, "nats" 启用 NATS Streaming 镜像
	Address     string
	ClusterID   string
	ClientID    string
	TopicPrefix string
	Names       []string
}

// SubjectCfg path of the subject config.
type SubjectCfg struct {
	MaxDeferred int
}

// LoggerCfg path of the logger config.
type LoggerCfg struct {
	Caller        bool
	Level         string
	HumanReadable bool
}

// DatabaseCfg path of the PostgreSQL DB config.
type DatabaseCfg struct {
	Host           string `valid:"required"`
	Port           uint16 `valid:"required"`
	Name           string `valid:"required"`
	User           string `valid:"required"`
	Password       string `valid:"required"`
	MaxConnections int
}

// Default returns a config with every optional value set.
func Default() Config {
	return Config{
		Server: ServerCfg{
			Address:           ":8090",
			EventsPath:        "/events",
			WriteTimeout:      5 * time.Second,
			PingInterval:      20 * time.Second,
			PongTimeout:       60 * time.Second,
			ReadLimit:         64 * 1024,
			RefreshConnection: 30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Client: ClientCfg{
			URL:              "ws://localhost:8090/events",
			APIURL:           "http://localhost:8090/api",
			HandshakeTimeout: 10 * time.Second,
			DialTimeout:      30 * time.Second,
		},
		Database: DatabaseCfg{
			Port:           5432,
			MaxConnections: 5,
		},
		Publisher: PublisherCfg{
			TopicPrefix: "puppr",
		},
		Subject: SubjectCfg{
			MaxDeferred: 1024,
		},
		Logger: LoggerCfg{
			Level:         "info",
			HumanReadable: true,
		},
	}
}

// Load reads the config file at path over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("puppr")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "error reading config")
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode into config struct")
	}
	return &cfg, nil
}

// ValidateServer checks the sections the server needs.
// The database section is skipped when memory is set.
func (c Config) ValidateServer(memory bool) error {
	if _, err := govalidator.ValidateStruct(c.Server); err != nil {
		return errors.Wrap(err, "server")
	}
	if !memory {
		if _, err := govalidator.ValidateStruct(c.Database); err != nil {
			return errors.Wrap(err, "database")
		}
	}
	return c.validatePublisher()
}

// ValidateClient checks the sections the client needs.
func (c Config) ValidateClient() error {
	if _, err := govalidator.ValidateStruct(c.Client); err != nil {
		return errors.Wrap(err, "client")
	}
	return nil
}

func (c Config) validatePublisher() error {
	switch c.Publisher.Type {
	case "":
		return nil
	case "nats":
		if c.Publisher.Address == "" || c.Publisher.ClusterID == "" || c.Publisher.ClientID == "" {
			return errors.New("publisher: nats needs address, cluster id and client id")
		}
		return nil
	default:
		return errors.Errorf("publisher: unknown type %q", c.Publisher.Type)
	}
}
