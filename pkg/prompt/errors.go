package prompt

import "errors"

var ErrPromptFailed = errors.New("failed to read answer")
