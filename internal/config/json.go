package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		MasterSecret string `json:"master_secret"`
		LogHashKey   string `json:"log_hash_key"`
		Version      string `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			Driver string `json:"driver"`
			DSN    string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress     string   `json:"http_address"`
		RequestTimeout  Duration `json:"request_timeout"`
		UpstreamTimeout Duration `json:"upstream_timeout"`
	} `json:"server,omitempty"`

	Firewall struct {
		PolicyPath    string `json:"policy_path"`
		WorkspaceRoot string `json:"workspace_root"`
		CodeSearchURL string `json:"code_search_url"`
	} `json:"firewall,omitempty"`

	Workers struct {
		VaultPurgeInterval Duration `json:"vault_purge_interval"`
		VaultTTL           Duration `json:"vault_ttl"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			MasterSecret: jsonCfg.App.MasterSecret,
			LogHashKey:   jsonCfg.App.LogHashKey,
			Version:      jsonCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{
				Driver: jsonCfg.Storage.DB.Driver,
				DSN:    jsonCfg.Storage.DB.DSN,
			},
		},
		Server: Server{
			HTTPAddress:     jsonCfg.Server.HTTPAddress,
			RequestTimeout:  time.Duration(jsonCfg.Server.RequestTimeout),
			UpstreamTimeout: time.Duration(jsonCfg.Server.UpstreamTimeout),
		},
		Firewall: Firewall{
			PolicyPath:    jsonCfg.Firewall.PolicyPath,
			WorkspaceRoot: jsonCfg.Firewall.WorkspaceRoot,
			CodeSearchURL: jsonCfg.Firewall.CodeSearchURL,
		},
		Workers: Workers{
			VaultPurgeInterval: time.Duration(jsonCfg.Workers.VaultPurgeInterval),
			VaultTTL:           time.Duration(jsonCfg.Workers.VaultTTL),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
