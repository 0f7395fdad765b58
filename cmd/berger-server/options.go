package main

import (
	"net"
	"strconv"

	"github.com/cohortclub/berger/internal/database"
	"github.com/cohortclub/berger/internal/gamesrc"
	"github.com/cohortclub/berger/internal/manager"
	"github.com/cohortclub/berger/internal/watch"
)

type HTTPSOptions struct {
	AllowedSecureDomains []string `toml:"allowed-secure-domains"`
	CachePath            string   `toml:"cache-path"`
	ExposeInsecure       bool     `toml:"expose-insecure"`
	Port                 uint16   `toml:"port"`
}

type Options struct {
	Host      string           `toml:"host"`
	Port      uint16           `toml:"port"`
	APIPrefix string           `toml:"api-prefix"`
	HTTPS     *HTTPSOptions    `toml:"https"`
	DB        database.Options `toml:"db"`
	Manager   manager.Options  `toml:"manager"`
	Games     gamesrc.Options  `toml:"games"`
	Watch     watch.Options    `toml:"watch"`

	apiToken string
}

func (o *Options) FillDefaults() {
	if o.Host == "" {
		o.Host = "127.0.0.1"
	}
	if o.Port == 0 {
		o.Port = 8080
	}
	if o.APIPrefix == "" {
		o.APIPrefix = "/api/v1"
	}
	if o.HTTPS != nil && o.HTTPS.Port == 0 {
		o.HTTPS.Port = 443
	}
	o.DB.FillDefaults()
	o.Manager.FillDefaults()
	o.Games.FillDefaults()
	o.Watch.FillDefaults()
}

func (o *Options) MixSecrets(s *Secrets) {
	o.apiToken = s.APIToken
}

func (o *Options) AddrWithPort() string {
	return net.JoinHostPort(o.Host, strconv.FormatUint(uint64(o.Port), 10))
}

func (o *Options) SecureAddrWithPort() string {
	return net.JoinHostPort(o.Host, strconv.FormatUint(uint64(o.HTTPS.Port), 10))
}
