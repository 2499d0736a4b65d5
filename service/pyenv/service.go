// Package pyenv resolves python interpreters on local or remote hosts and
// provides throwaway one-shot interpreter invocations, such as the
// expression-mode compile probe used before expression evaluation.
package pyenv

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs/url"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	rssh "github.com/viant/gosh/runner/ssh"
	"github.com/viant/scy/cred/secret"
	"golang.org/x/crypto/ssh"
)

const probeTimeout = 10 * time.Second

// interpreterNames are probed in order when resolving an interpreter.
var interpreterNames = []string{"python3", "python"}

// Host identifies where interpreters are looked up. The zero value means
// the local host.
type Host struct {
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Credentials string `json:"credentials,omitempty" yaml:"credentials,omitempty"`
}

// IsLocal reports whether the host is the machine the engine runs on.
func (h *Host) IsLocal() bool {
	if h == nil || h.URL == "" {
		return true
	}
	return url.Host(h.URL) == "localhost"
}

func (h *Host) key() string {
	if h == nil {
		return "localhost"
	}
	return h.URL
}

// Service discovers interpreters and runs one-shot probes through pooled
// shell sessions.
type Service struct {
	sessions map[string]*sessionInfo
	mux      sync.Mutex
}

type sessionInfo struct {
	service *gosh.Service
}

// New creates a new Service instance.
func New() *Service {
	return &Service{sessions: make(map[string]*sessionInfo)}
}

// Resolve returns the path of a python interpreter on the host, probing
// well-known binary names in order.
func (s *Service) Resolve(ctx context.Context, host *Host) (string, error) {
	session, err := s.getSession(ctx, host)
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	for _, name := range interpreterNames {
		stdout, status, err := session.service.Run(ctx, "command -v "+name,
			runner.WithTimeout(int(probeTimeout.Milliseconds())))
		if err != nil || status != 0 {
			continue
		}
		if path := firstLine(stdout); path != "" {
			return path, nil
		}
	}
	return "", fmt.Errorf("no python interpreter found on %v", host.key())
}

// Version returns the version banner of the given interpreter.
func (s *Service) Version(ctx context.Context, host *Host, interpreter string) (string, error) {
	session, err := s.getSession(ctx, host)
	if err != nil {
		return "", err
	}
	stdout, status, err := session.service.Run(ctx, interpreter+" --version",
		runner.WithTimeout(int(probeTimeout.Milliseconds())))
	if err != nil {
		return "", err
	}
	if status != 0 {
		return "", fmt.Errorf("%v --version exited with status %v", interpreter, status)
	}
	return strings.TrimSpace(stdout), nil
}

// getSession retrieves an existing shell session for the host or creates
// a new one.
func (s *Service) getSession(ctx context.Context, host *Host) (*sessionInfo, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if session, ok := s.sessions[host.key()]; ok {
		return session, nil
	}

	var service *gosh.Service
	var err error
	if host.IsLocal() {
		service, err = gosh.New(ctx, local.New())
	} else {
		config, cfgErr := s.getSSHConfig(ctx, host)
		if cfgErr != nil {
			return nil, fmt.Errorf("failed to get SSH config: %w", cfgErr)
		}
		sshHost := url.Host(host.URL)
		if !strings.Contains(sshHost, ":") {
			sshHost += ":22"
		}
		service, err = gosh.New(ctx, rssh.New(sshHost, config))
	}
	if err != nil {
		return nil, err
	}
	session := &sessionInfo{service: service}
	s.sessions[host.key()] = session
	return session, nil
}

// getSSHConfig creates an SSH client config from the host's secrets.
func (s *Service) getSSHConfig(ctx context.Context, host *Host) (*ssh.ClientConfig, error) {
	credentials := host.Credentials
	if credentials == "" {
		credentials = "localhost"
	}
	secrets := secret.New()
	generic, err := secrets.GetCredentials(ctx, credentials)
	if err != nil {
		return nil, err
	}
	return generic.SSH.Config(ctx)
}

// Close releases all shell sessions held by this service.
func (s *Service) Close(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	var errs []string
	for id, session := range s.sessions {
		if err := session.service.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("failed to close session %s: %v", id, err))
		}
	}
	s.sessions = make(map[string]*sessionInfo)
	if len(errs) > 0 {
		return fmt.Errorf("errors closing sessions: %s", strings.Join(errs, "; "))
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
