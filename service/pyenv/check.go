package pyenv

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/viant/gosh/runner"
)

// CheckExpression verifies, via a throwaway one-shot interpreter invocation,
// that source parses as a standalone expression. The source travels base64
// encoded so arbitrary quoting survives the shell boundary.
func (s *Service) CheckExpression(ctx context.Context, host *Host, interpreter, source string) (bool, error) {
	session, err := s.getSession(ctx, host)
	if err != nil {
		return false, err
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(source))
	probe := fmt.Sprintf(
		`%s -c "import base64; compile(base64.b64decode('%s').decode('utf-8'), '<eval>', 'eval')"`,
		interpreter, encoded)
	_, status, err := session.service.Run(ctx, probe,
		runner.WithTimeout(int(probeTimeout.Milliseconds())))
	if err != nil {
		return false, err
	}
	return status == 0, nil
}
