package main

import (
	_ "embed"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/tomz197/driftfield/internal/config"
	"github.com/tomz197/driftfield/internal/logging"
)

//go:embed index.html
var htmlPage string

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadOrDefault(config.GetEnv("DRIFTFIELD_CONFIG", config.DefaultPath))
	if err != nil {
		return err
	}
	config.ApplyEnv(cfg)

	log, cleanup, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer cleanup()

	page := renderPage(cfg.Web.SSHDisplayHost, cfg.SSH.Port)
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})

	addr := net.JoinHostPort(cfg.Web.Host, cfg.Web.Port)
	log.Info("starting web server", zap.String("addr", "http://"+addr))
	if err := http.ListenAndServe(addr, nil); err != nil {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

// renderPage fills the landing page's connection instructions.
func renderPage(sshHost, sshPort string) string {
	cmd := "ssh " + sshHost
	if sshPort != "" && sshPort != "22" {
		cmd = fmt.Sprintf("ssh -p %s %s", sshPort, sshHost)
	}
	return strings.NewReplacer("{{.SSHHost}}", sshHost, "{{.SSHCommand}}", cmd).Replace(htmlPage)
}
