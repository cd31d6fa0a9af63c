package uwassert

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/happyhackingspace/uwassert/classifier"
)

// Config locates the classifier resources and selects the active features.
// Relative resource paths are resolved against ResourceDir.
type Config struct {
	ResourceDir     string `mapstructure:"resource_dir" yaml:"resource_dir"`
	Model           string `mapstructure:"model" yaml:"model"`
	Vocabulary      string `mapstructure:"vocabulary" yaml:"vocabulary"`
	NegationSignals string `mapstructure:"negation_signals" yaml:"negation_signals"`
	KinshipSignals  string `mapstructure:"kinship_signals" yaml:"kinship_signals"`
	// Features names the detectors to run, whitespace separated.
	Features string `mapstructure:"features" yaml:"features"`
	// Filter names the feature types passed to the model. Empty means Features.
	Filter string `mapstructure:"filter" yaml:"filter,omitempty"`
	// CacheTTL keeps batch results for repeated requests. Zero disables the cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl,omitempty"`
}

// DefaultConfig returns the resource layout of the bundled model.
func DefaultConfig() Config {
	return Config{
		ResourceDir:     "resources",
		Model:           "assert.model",
		Vocabulary:      "assert.vocab.json",
		NegationSignals: "bionegsignals.txt",
		KinshipSignals:  "kinshipsignals.txt",
		Features:        classifier.DefaultFeatureSetSpec,
	}
}

// SetDefaults registers DefaultConfig on v.
func SetDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("resource_dir", def.ResourceDir)
	v.SetDefault("model", def.Model)
	v.SetDefault("vocabulary", def.Vocabulary)
	v.SetDefault("negation_signals", def.NegationSignals)
	v.SetDefault("kinship_signals", def.KinshipSignals)
	v.SetDefault("features", def.Features)
	v.SetDefault("filter", "")
	v.SetDefault("cache_ttl", def.CacheTTL)
}

// NewViper creates a viper instance with defaults and UWASSERT_* environment
// bindings. A non-empty configFile is read as YAML.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("UWASSERT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", configFile)
		}
	}
	return v, nil
}

// LoadConfig reads configuration from configFile (optional) and the environment.
func LoadConfig(configFile string) (Config, error) {
	v, err := NewViper(configFile)
	if err != nil {
		return Config{}, err
	}
	return ConfigFromViper(v)
}

// ConfigFromViper decodes the configuration held by v.
func ConfigFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// Resolve returns p joined to ResourceDir unless p is absolute or empty.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.ResourceDir == "" {
		return p
	}
	return filepath.Join(c.ResourceDir, p)
}

// FeatureSets parses the extraction mask and the model filter.
func (c Config) FeatureSets() (mask, filter classifier.FeatureSet, err error) {
	mask, err = classifier.ParseFeatureSet(c.Features)
	if err != nil {
		return mask, filter, errors.Wrap(err, "features")
	}
	if strings.TrimSpace(c.Filter) == "" {
		return mask, mask, nil
	}
	filter, err = classifier.ParseFeatureSet(c.Filter)
	if err != nil {
		return mask, filter, errors.Wrap(err, "filter")
	}
	return mask, filter, nil
}
