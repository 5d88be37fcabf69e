package config

import (
	"flag"
	"reflect"
	"strconv"
)

// RegisterFlags registers every flag NewFromFlags later reads back into a
// Config, grounded on the teacher's own RegisterFlags/NewFromFlags split
// (register against a *flag.FlagSet up front, then walk the struct's
// `flag` tags to populate it after Parse).
func RegisterFlags(fs *flag.FlagSet) {
	fs.String("root", "/var/run/lifecycled", "root directory for on-disk supervisor state.")
	fs.String("log-level", "info", "log level: trace, debug, info, warn, error.")
	fs.Bool("debug", false, "shorthand for --log-level=debug.")
	fs.String("device-config", "", "path to a TOML file with device-specific defaults.")
	fs.Int("gate-deadline-seconds", 30, "deadline in seconds for each gate wait performed by a state action.")
	fs.Bool("wait-for-app-ready-on-pause", false, "wait for the app_ready gate when entering Paused.")
	fs.String("runtime-bus-name", "org.rdk.RuntimeManager", "D-Bus service name of the runtime collaborator.")
	fs.String("display-bus-name", "org.rdk.DisplayManager", "D-Bus service name of the display collaborator.")
	fs.String("storage-bus-name", "org.rdk.PackageManager", "D-Bus service name of the storage collaborator.")
}

// NewFromFlags builds a Config by walking its `flag` struct tags and
// looking each one up on fs, which must already have been registered via
// RegisterFlags and parsed. Device defaults are loaded separately because
// they come from a file path named by one of these flags, not from a
// flag value itself.
func NewFromFlags(fs *flag.FlagSet) (*Config, error) {
	conf := &Config{}

	obj := reflect.ValueOf(conf).Elem()
	st := obj.Type()
	for i := 0; i < st.NumField(); i++ {
		name, ok := st.Field(i).Tag.Lookup("flag")
		if !ok {
			continue
		}
		fv := fs.Lookup(name)
		if fv == nil {
			continue
		}
		if err := setField(obj.Field(i), fv.Value.String()); err != nil {
			return nil, err
		}
	}

	if conf.Debug {
		conf.LogLevel = "debug"
	}

	defaults, err := LoadDeviceDefaults(conf.DeviceConfig)
	if err != nil {
		return nil, err
	}
	conf.Defaults = defaults

	return conf, nil
}

func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(n))
	}
	return nil
}
