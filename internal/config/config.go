// Package config merges command-line flags, PASSGEN_* environment variables
// and an optional config file into a validated Config.
package config

import (
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lth/passgen/internal/batch"
	"github.com/lth/passgen/internal/charset"
	"github.com/lth/passgen/password"
)

// EnvPrefix prefixes every environment variable, e.g. PASSGEN_NO_UPPER.
const EnvPrefix = "PASSGEN"

type Config struct {
	Length      int  `mapstructure:"length" validate:"gte=0"`
	Digits      int  `mapstructure:"digits" validate:"gte=0"`
	Symbols     int  `mapstructure:"symbols" validate:"gte=0"`
	NoUpper     bool `mapstructure:"no-upper"`
	AllowRepeat bool `mapstructure:"allow-repeat"`
	Count       int  `mapstructure:"count" validate:"gte=1"`
	Workers     int  `mapstructure:"workers" validate:"gte=0"`

	// Pools accept a preset name (see internal/charset) or literal characters.
	LowerSet  string `mapstructure:"lower"`
	UpperSet  string `mapstructure:"upper"`
	DigitSet  string `mapstructure:"digit-set"`
	SymbolSet string `mapstructure:"symbol-set"`

	Verbose bool `mapstructure:"verbose"`
}

// AddFlags registers the generation flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.IntP("length", "l", 64, "Total password length")
	fs.IntP("digits", "d", 10, "Number of digits")
	fs.IntP("symbols", "s", 10, "Number of symbols")
	fs.BoolP("no-upper", "U", false, "Exclude uppercase letters")
	fs.BoolP("allow-repeat", "r", false, "Allow characters to repeat")
	fs.IntP("count", "c", 1, "Number of passwords to generate")
	fs.IntP("workers", "t", runtime.NumCPU(), "Number of worker goroutines")
	fs.String("lower", "", "Lowercase pool: preset name or literal characters")
	fs.String("upper", "", "Uppercase pool: preset name or literal characters")
	fs.String("digit-set", "", "Digit pool: preset name or literal characters")
	fs.String("symbol-set", "", "Symbol pool: preset name or literal characters")
}

// BindFlags binds every flag in fs to v under its long name.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	var result error
	fs.VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			result = multierror.Append(result, err)
		}
	})
	return result
}

// Load resolves the configuration. Precedence: explicitly set flags, then
// environment, then configFile (if not empty), then flag defaults.
func Load(fs *pflag.FlagSet, configFile string) (Config, error) {
	v := viper.New()

	if err := BindFlags(fs, v); err != nil {
		return Config{}, errors.Wrap(err, "bind flags")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// Request converts the counts and switches into a batch request.
func (c Config) Request() batch.Request {
	return batch.Request{
		Length:      c.Length,
		Digits:      c.Digits,
		Symbols:     c.Symbols,
		NoUpper:     c.NoUpper,
		AllowRepeat: c.AllowRepeat,
	}
}

// GeneratorInput resolves the configured pools. Unset pools stay empty so
// the generator uses its defaults.
func (c Config) GeneratorInput() *password.GeneratorInput {
	return &password.GeneratorInput{
		LowerLetters: charset.Resolve(c.LowerSet),
		UpperLetters: charset.Resolve(c.UpperSet),
		Digits:       charset.Resolve(c.DigitSet),
		Symbols:      charset.Resolve(c.SymbolSet),
	}
}
