// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"jetcart/internal/pkg/logger"
)

// Config 汇总了进程启动所需的全部配置。
// 配置来源优先级: 环境变量 > YAML 文件 > 默认值。
type Config struct {
	App struct {
		Name string `yaml:"name"`
		Port int    `yaml:"port"`
	} `yaml:"app"`

	Infra struct {
		MySQL struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers         []string `yaml:"brokers"`
			StockEventTopic string   `yaml:"stock_event_topic"`
		} `yaml:"kafka"`
		Zookeeper struct {
			Addrs []string `yaml:"addrs"`
		} `yaml:"zookeeper"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
	} `yaml:"infra"`

	Inventory struct {
		// Backend 选择库存台账实现: mysql | redis | memory
		Backend        string        `yaml:"backend"`
		BlockWindow    Duration      `yaml:"block_window"`
		SweepInterval  Duration      `yaml:"sweep_interval"`
		SweepBatchSize int           `yaml:"sweep_batch_size"`
		// UseZkLock 开启后，内存台账模式下用 ZooKeeper 对 SKU 加锁
		UseZkLock bool `yaml:"use_zk_lock"`
	} `yaml:"inventory"`
}

// Duration 让配置文件可以写 "5m"、"30s" 这种时长字面量。
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

var currentConfig *Config

// Init 加载配置。必须在 StartService 之前调用。
func Init() {
	cfg := defaultConfig()

	path := getEnv("JETCART_CONFIG", "configs/jetcart.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			logger.Logger().Fatal().Err(err).Str("path", path).Msg("invalid config file")
		}
		logger.Logger().Info().Str("path", path).Msg("config file loaded")
	}

	applyEnvOverrides(cfg)
	currentConfig = cfg
}

// GetCurrentConfig 返回进程级配置。Init 未调用时返回默认值。
func GetCurrentConfig() *Config {
	if currentConfig == nil {
		cfg := defaultConfig()
		applyEnvOverrides(cfg)
		currentConfig = cfg
	}
	return currentConfig
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "jetcart"
	cfg.App.Port = 5000
	cfg.Infra.MySQL.DSN = "root:root@tcp(localhost:3306)/jetcart?charset=utf8mb4&parseTime=True&loc=Local"
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Kafka.StockEventTopic = "stock-event-topic"
	cfg.Infra.Zookeeper.Addrs = []string{"localhost:2181"}
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Inventory.Backend = "mysql"
	cfg.Inventory.BlockWindow = Duration(5 * time.Minute)
	cfg.Inventory.SweepInterval = Duration(30 * time.Second)
	cfg.Inventory.SweepBatchSize = 100
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.Infra.MySQL.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Infra.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Infra.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("ZK_ADDRS"); v != "" {
		cfg.Infra.Zookeeper.Addrs = strings.Split(v, ",")
	}
	if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
		cfg.Infra.Jaeger.Endpoint = v
	}
	if v := os.Getenv("INVENTORY_BACKEND"); v != "" {
		cfg.Inventory.Backend = v
	}
	if v := os.Getenv("INVENTORY_BLOCK_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Inventory.BlockWindow = Duration(d)
		}
	}
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
