package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

// Span exporters accepted by TRACING_EXPORTER.
const (
	TracingNone   = "none"
	TracingStdout = "stdout"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`
	// StorageDriver selects the persistence backend: "mongo" or "memory".
	StorageDriver string `mapstructure:"STORAGE_DRIVER" default:"mongo"`
	// PublicBaseURL is the externally reachable base URL of this API, used to build
	// the payment gateway callback.
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL" required:"true"`

	Mongo       MongoConfig       `mapstructure:",squash"`
	Redis       RedisConfig       `mapstructure:",squash"`
	PhonePe     PhonePeConfig     `mapstructure:",squash"`
	ShipCorrect ShipCorrectConfig `mapstructure:",squash"`
	Kafka       KafkaConfig       `mapstructure:",squash"`
	Frontend    FrontendConfig    `mapstructure:",squash"`
	Orders      OrdersConfig      `mapstructure:",squash"`
	Tracing     TracingConfig     `mapstructure:",squash"`
}

// MongoConfig holds the document store connection details.
type MongoConfig struct {
	URI      string        `mapstructure:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database string        `mapstructure:"MONGO_DATABASE" default:"storefront"`
	Timeout  time.Duration `mapstructure:"MONGO_TIMEOUT" default:"10s"`
}

// RedisConfig holds the cache connection details. An empty URL selects the in-process cache.
type RedisConfig struct {
	URL string `mapstructure:"REDIS_URL"`
	// KeyPrefix namespaces every cache key in a shared Redis.
	KeyPrefix string `mapstructure:"REDIS_KEY_PREFIX" default:"storefront:"`
}

// PhonePeConfig holds the payment gateway credentials.
type PhonePeConfig struct {
	// APIURL is the Checkout v2 base URL (pay and order status endpoints hang off it).
	APIURL string `mapstructure:"PHONEPE_API_URL" default:"https://api.phonepe.com/apis/pg"`
	// AuthURL is the identity manager base URL used for the OAuth token.
	AuthURL       string        `mapstructure:"PHONEPE_AUTH_URL" default:"https://api.phonepe.com/apis/identity-manager"`
	ClientID      string        `mapstructure:"PHONEPE_CLIENT_ID" required:"true"`
	ClientSecret  string        `mapstructure:"PHONEPE_CLIENT_SECRET" required:"true"`
	ClientVersion string        `mapstructure:"PHONEPE_CLIENT_VERSION" default:"1"`
	// ExpireAfter is the payment session lifetime in seconds.
	ExpireAfter int           `mapstructure:"PHONEPE_EXPIRE_AFTER" default:"1200"`
	Timeout     time.Duration `mapstructure:"PHONEPE_TIMEOUT" default:"15s"`
}

// ShipCorrectConfig holds the shipping provider credentials.
type ShipCorrectConfig struct {
	APIURL       string        `mapstructure:"SHIPCORRECT_API_URL" default:"https://www.shipcorrect.com/api/createForwardOrder.php"`
	APIKey       string        `mapstructure:"SHIPCORRECT_API_KEY" required:"true"`
	DefaultEmail string        `mapstructure:"SHIPCORRECT_DEFAULT_EMAIL" default:"orders@storefront.local"`
	Timeout      time.Duration `mapstructure:"SHIPCORRECT_TIMEOUT" default:"20s"`
}

// KafkaConfig holds the event bus settings. Empty brokers disable publishing.
type KafkaConfig struct {
	Brokers string `mapstructure:"KAFKA_BROKERS"`
	Topic   string `mapstructure:"KAFKA_TOPIC" default:"orders.events"`
}

// BrokerList splits the comma separated broker list.
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// FrontendConfig holds the storefront pages the payment callback redirects to.
type FrontendConfig struct {
	SuccessURL string `mapstructure:"FRONTEND_SUCCESS_URL" default:"http://localhost:3000/thankyou"`
	FailureURL string `mapstructure:"FRONTEND_FAILURE_URL" default:"http://localhost:3000/payment-failed"`
	PendingURL string `mapstructure:"FRONTEND_PENDING_URL" default:"http://localhost:3000/payment-pending"`
}

// TracingConfig selects where spans go.
type TracingConfig struct {
	Exporter string `mapstructure:"TRACING_EXPORTER" default:"none"`
	// SampleRatio is the share of new traces recorded, from 0 to 1.
	SampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO" default:"1"`
}

// OrdersConfig tunes the order orchestrator and its reconciliation worker.
type OrdersConfig struct {
	// InitiateTimeout bounds the payment initiation call.
	InitiateTimeout time.Duration `mapstructure:"PAYMENT_INITIATE_TIMEOUT" default:"10s"`
	// VerifyLeaseTTL is how long a verification attempt holds an order.
	VerifyLeaseTTL time.Duration `mapstructure:"VERIFY_LEASE_TTL" default:"30s"`
	// ReconcileInterval is the tick of the background worker. Zero disables it.
	ReconcileInterval time.Duration `mapstructure:"RECONCILE_INTERVAL" default:"1m"`
	// ReconcileStaleAfter is the age after which a pending online order is re-verified.
	ReconcileStaleAfter time.Duration `mapstructure:"RECONCILE_STALE_AFTER" default:"30m"`
	ShipmentRetryBase   time.Duration `mapstructure:"SHIPMENT_RETRY_BASE" default:"1m"`
	ShipmentMaxAttempts int           `mapstructure:"SHIPMENT_MAX_ATTEMPTS" default:"5"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	config.PublicBaseURL = strings.TrimRight(config.PublicBaseURL, "/")

	return &config, nil
}

func (c *AppConfig) validate() error {
	switch c.StorageDriver {
	case StorageMongo, StorageMemory:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: must be %s or %s", c.StorageDriver, StorageMongo, StorageMemory)
	}
	switch c.Tracing.Exporter {
	case TracingNone, TracingStdout:
	default:
		return fmt.Errorf("invalid TRACING_EXPORTER %q: must be %s or %s", c.Tracing.Exporter, TracingNone, TracingStdout)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}
	if c.Orders.ShipmentMaxAttempts < 1 {
		return fmt.Errorf("SHIPMENT_MAX_ATTEMPTS must be at least 1")
	}
	// A pending order is only abandoned once the shopper can no longer pay it.
	session := time.Duration(c.PhonePe.ExpireAfter) * time.Second
	if c.Orders.ReconcileInterval > 0 && c.Orders.ReconcileStaleAfter > 0 && c.Orders.ReconcileStaleAfter <= session {
		return fmt.Errorf("RECONCILE_STALE_AFTER (%s) must exceed PHONEPE_EXPIRE_AFTER (%s)", c.Orders.ReconcileStaleAfter, session)
	}
	return nil
}

// processTags walks the struct fields, binds every key to the environment and
// registers default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("bind env %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
