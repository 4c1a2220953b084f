package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-driver database driver name (sqlite3 or pgx)
//	-c/-config json file path with configs
//	-policy global policy file path
//	-workspace workspace root for file-scope checks
//	-master-secret vault master secret
//	-log-hash-key request log signing key
//	-code-search-url code search endpoint for the privacy analyzer
//	-request-timeout inbound request timeout (e.g., "30s", "1m")
//	-upstream-timeout upstream provider call timeout
//	-vault-ttl vault token lifetime
//	-vault-purge-interval expired vault entry sweep interval
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var databaseDriver string
	var jsonConfigPath string
	var policyPath string
	var workspaceRoot string
	var masterSecret string
	var logHashKey string
	var codeSearchURL string
	var requestTimeout time.Duration
	var upstreamTimeout time.Duration
	var vaultTTL time.Duration
	var vaultPurgeInterval time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&databaseDriver, "driver", "", "Database driver (sqlite3 or pgx)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&policyPath, "policy", "", "Global policy file path")
	flag.StringVar(&workspaceRoot, "workspace", "", "Workspace root for file-scope checks")
	flag.StringVar(&masterSecret, "master-secret", "", "Vault master secret")
	flag.StringVar(&logHashKey, "log-hash-key", "", "Request log signing key")
	flag.StringVar(&codeSearchURL, "code-search-url", "", "Code search endpoint URL")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&upstreamTimeout, "upstream-timeout", 0, "Upstream call timeout (e.g., 2m)")
	flag.DurationVar(&vaultTTL, "vault-ttl", 0, "Vault token lifetime (e.g., 1h)")
	flag.DurationVar(&vaultPurgeInterval, "vault-purge-interval", 0, "Vault purge interval (e.g., 5m)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			MasterSecret: masterSecret,
			LogHashKey:   logHashKey,
		},
		Storage: Storage{
			DB: DB{
				Driver: databaseDriver,
				DSN:    databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:     serverAddress.String(),
			RequestTimeout:  requestTimeout,
			UpstreamTimeout: upstreamTimeout,
		},
		Firewall: Firewall{
			PolicyPath:    policyPath,
			WorkspaceRoot: workspaceRoot,
			CodeSearchURL: codeSearchURL,
		},
		Workers: Workers{
			VaultTTL:           vaultTTL,
			VaultPurgeInterval: vaultPurgeInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
