package configuration

import (
	"bytes"
	_ "embed"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/G-Research/genie/internal/broker/criteria"
	"github.com/G-Research/genie/internal/broker/model"
)

//go:embed config.yaml
var defaultConfig []byte

const EnvPrefix = "GENIE"

// CustomHooks decode the broker's own types from configuration and fixture files.
// viper accepts a single decode hook, so they are composed with the defaults viper would otherwise use.
// The criteria hooks run first; the generic string to slice hook would otherwise split "a,b|c" on commas.
var CustomHooks = []viper.DecoderConfigOption{
	viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		criteria.TagSetHookFunc(),
		criteria.ClusterCriteriaHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		ClusterStatusHookFunc(),
		CommandStatusHookFunc(),
		ApplicationStatusHookFunc(),
	)),
}

// LoadConfig reads the built-in defaults, then each user file in order, then GENIE_ prefixed environment variables
// (GENIE_STORE_TYPE overrides store.type). Later sources override earlier ones.
func LoadConfig(v *viper.Viper, userSpecifiedConfigs []string) (BrokerConfig, error) {
	var config BrokerConfig
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultConfig)); err != nil {
		return config, errors.WithMessage(err, "failed to read default config")
	}
	for _, path := range userSpecifiedConfigs {
		log.Infof("Read config from %s", path)
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return config, errors.WithMessagef(err, "failed to read config %s", path)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&config, CustomHooks...); err != nil {
		return config, errors.WithMessage(err, "failed to unmarshal config")
	}
	return config, nil
}

func ClusterStatusHookFunc() mapstructure.DecodeHookFuncType {
	return statusHookFunc(model.ClusterStatus(""), func(s string) (interface{}, error) {
		return model.ParseClusterStatus(s)
	})
}

func CommandStatusHookFunc() mapstructure.DecodeHookFuncType {
	return statusHookFunc(model.CommandStatus(""), func(s string) (interface{}, error) {
		return model.ParseCommandStatus(s)
	})
}

func ApplicationStatusHookFunc() mapstructure.DecodeHookFuncType {
	return statusHookFunc(model.ApplicationStatus(""), func(s string) (interface{}, error) {
		return model.ParseApplicationStatus(s)
	})
}

func statusHookFunc(target interface{}, parse func(string) (interface{}, error)) mapstructure.DecodeHookFuncType {
	targetType := reflect.TypeOf(target)
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != targetType {
			return data, nil
		}
		return parse(data.(string))
	}
}
