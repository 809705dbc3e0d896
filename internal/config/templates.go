package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "node":
		return nodeTemplate, nil
	case "rics":
		return ricsTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const nodeTemplate = `id = "infocoord"
http_listen_addr = ":8083"
database_path = "infocoord.db"
ric_config_path = "rics.toml"
watch_ric_config = true

supervision_schedule = "@every 30s"
supervision_max_failures = 3
service_expiry_schedule = "@every 1m"
job_push_attempts = 2

remote_timeout_ms = 10000
remote_rate_limit = 200
remote_rate_burst = 50
notify_concurrency = 16
# api_token = "change-me"
`

const ricsTemplate = `[[ric]]
name = "ric1"
base_url = "http://localhost:8085"
managed_element_ids = ["kista_1", "kista_2"]

[[ric]]
name = "ric2"
base_url = "http://localhost:8086"
managed_element_ids = ["kista_3"]
`
