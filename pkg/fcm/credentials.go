package fcm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
)

var regxTrailingComma = regexp.MustCompile(`,\s*([}\]])`)

// ServiceAccountKey represent service account key json
type ServiceAccountKey struct {
	Type                    string `json:"type" validate:"required"`
	ProjectID               string `json:"project_id" validate:"required"`
	PrivateKeyID            string `json:"private_key_id" validate:"required"`
	PrivateKey              string `json:"private_key" validate:"required"`
	ClientEmail             string `json:"client_email" validate:"required"`
	ClientID                string `json:"client_id" validate:"required"`
	AuthURI                 string `json:"auth_uri" validate:"required"`
	TokenURI                string `json:"token_uri" validate:"required"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url" validate:"required"`
	ClientX509CertURL       string `json:"client_x509_cert_url" validate:"required"`
	UniverseDomain          string `json:"universe_domain" validate:"required"`
}

// ServiceAccountKeyFromJSON parses a service account key. Trailing commas before a closing
// brace or bracket are tolerated, as they often slip into keys pasted into secret stores.
func ServiceAccountKeyFromJSON(s string) (*ServiceAccountKey, error) {
	cleaned := regxTrailingComma.ReplaceAllString(strings.TrimSpace(s), "$1")

	key := &ServiceAccountKey{}
	if err := json.Unmarshal([]byte(cleaned), key); err != nil {
		return nil, fmt.Errorf("invalid service account json: %w", err)
	}

	if err := validator.Validate(key); err != nil {
		return nil, fmt.Errorf("invalid service account key: %w", err)
	}

	return key, nil
}

// ToMap returns all eleven fields keyed by their json names.
func (k *ServiceAccountKey) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"type":                        k.Type,
		"project_id":                  k.ProjectID,
		"private_key_id":              k.PrivateKeyID,
		"private_key":                 k.PrivateKey,
		"client_email":                k.ClientEmail,
		"client_id":                   k.ClientID,
		"auth_uri":                    k.AuthURI,
		"token_uri":                   k.TokenURI,
		"auth_provider_x509_cert_url": k.AuthProviderX509CertURL,
		"client_x509_cert_url":        k.ClientX509CertURL,
		"universe_domain":             k.UniverseDomain,
	}
}

// JSON encodes the key in the format google.CredentialsFromJSON reads.
func (k *ServiceAccountKey) JSON() ([]byte, error) {
	return json.Marshal(k)
}
