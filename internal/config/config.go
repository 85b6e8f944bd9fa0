package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	RoleHost  = "host"
	RoleGuest = "guest"
)

var ErrInvalidRole = errors.New("role must be \"host\" or \"guest\"")

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Role       string `yaml:"role" env:"ROLE" env-default:"host"`
	ListenPort string `yaml:"listen-port" env:"LISTEN_PORT" env-default:"7555"`
	PeerAddr   string `yaml:"peer-addr" env:"PEER_ADDR" env-default:""`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// Validate - rejects role/address combinations the app cannot run with.
func (that *Config) Validate() error {
	switch that.Role {
	case RoleHost:
		if that.ListenPort == "" {
			return errors.New("host requires a listen-port")
		}
	case RoleGuest:
		if that.PeerAddr == "" {
			return errors.New("guest requires a peer-addr")
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidRole, that.Role)
	}

	return nil
}
