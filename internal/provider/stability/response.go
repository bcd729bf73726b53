package stability

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/mandalnilabja/scenesculpt/internal/types"
)

// artifact is one generated image in a response.
type artifact struct {
	Base64       *string `json:"base64"`
	Seed         int64   `json:"seed"`
	FinishReason string  `json:"finishReason"`
}

type generationResponse struct {
	Artifacts []artifact `json:"artifacts"`
}

var (
	errNoArtifacts   = errors.New("response has no artifacts")
	errMissingBase64 = errors.New("first artifact has no base64 payload")
)

// decodeFirstArtifact returns the decoded bytes of artifacts[0].base64.
func decodeFirstArtifact(op string, body []byte) ([]byte, error) {
	var resp generationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, types.NewDecodeError(op, err)
	}
	if len(resp.Artifacts) == 0 {
		return nil, types.NewDecodeError(op, errNoArtifacts)
	}

	first := resp.Artifacts[0]
	if first.Base64 == nil || *first.Base64 == "" {
		return nil, types.NewDecodeError(op, errMissingBase64)
	}

	data, err := base64.StdEncoding.DecodeString(*first.Base64)
	if err != nil {
		return nil, types.NewDecodeError(op, err)
	}
	return data, nil
}
