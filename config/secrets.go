package config

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
	"github.com/jmgilman/go/boundary/errors"
)

// OpResolveSecret is the operation name attached to secret failures.
const OpResolveSecret = "resolveSecret"

var (
	// ErrSecretEmpty is returned when a secret has no string value.
	ErrSecretEmpty = stderrors.New("secret value is empty")

	// ErrSecretKeyNotFound is returned when a JSON secret lacks the requested key.
	ErrSecretKeyNotFound = stderrors.New("secret key not found")
)

// SecretResolver resolves @secret attributes. key selects a field of a JSON
// secret; an empty key returns the whole value.
type SecretResolver interface {
	Resolve(ctx context.Context, id, key string) (string, error)
}

// SecretsAPI is the subset of the Secrets Manager client the resolver uses.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

var _ SecretsAPI = (*secretsmanager.Client)(nil)

// SecretRules classifies Secrets Manager failures.
var SecretRules = errors.Rules{
	errors.MatchType[*smtypes.ResourceNotFoundException](errors.KindNotFound, "secret does not exist"),
	errors.Match(ErrSecretKeyNotFound, errors.KindNotFound, "secret has no such key"),
	errors.Match(ErrSecretEmpty, errors.KindInvalidArgument, "secret has no string value"),
	errors.MatchFunc(hasAPICode("AccessDeniedException", "UnrecognizedClientException"), errors.KindPermissionDenied, "access to the secret denied"),
	errors.MatchType[*smtypes.InvalidParameterException](errors.KindInvalidArgument, "invalid secret request"),
	errors.MatchType[*smtypes.InvalidRequestException](errors.KindInvalidArgument, "invalid secret request"),
	errors.MatchType[*smtypes.DecryptionFailure](errors.KindPermissionDenied, "secret could not be decrypted"),
	errors.MatchType[smithy.APIError](errors.KindStorageFailure, "secrets manager request failed"),
}

func hasAPICode(codes ...string) func(error) bool {
	return func(err error) bool {
		var apiErr smithy.APIError
		if !stderrors.As(err, &apiErr) {
			return false
		}
		for _, code := range codes {
			if apiErr.ErrorCode() == code {
				return true
			}
		}
		return false
	}
}

// Secrets resolves secrets from AWS Secrets Manager.
type Secrets struct {
	mu     sync.Mutex
	newAPI func(ctx context.Context) (SecretsAPI, error)
	api    SecretsAPI
}

// NewSecrets creates a resolver over an existing client.
func NewSecrets(api SecretsAPI) *Secrets {
	return &Secrets{newAPI: func(context.Context) (SecretsAPI, error) { return api, nil }}
}

// NewAWSSecrets creates a resolver that loads the default AWS configuration on
// first use, so configurations without @secret attributes never touch AWS.
// An empty region uses the region of the default configuration.
func NewAWSSecrets(region string) *Secrets {
	return &Secrets{newAPI: func(ctx context.Context) (SecretsAPI, error) {
		var opts []func(*awsconfig.LoadOptions) error
		if region != "" {
			opts = append(opts, awsconfig.WithRegion(region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return secretsmanager.NewFromConfig(cfg), nil
	}}
}

// Resolve implements SecretResolver.
func (s *Secrets) Resolve(ctx context.Context, id, key string) (string, error) {
	api, err := s.client(ctx)
	if err != nil {
		return "", s.fail(id, err)
	}

	out, err := api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(id)})
	if err != nil {
		return "", s.fail(id, err)
	}

	value := aws.ToString(out.SecretString)
	if value == "" {
		return "", s.fail(id, ErrSecretEmpty)
	}
	if key == "" {
		return value, nil
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(value), &fields); err != nil {
		return "", s.fail(id, errors.Wrap(err, errors.KindInvalidArgument, OpResolveSecret, "secret is not a JSON object"))
	}
	field, ok := fields[key]
	if !ok {
		return "", errors.WithContext(s.fail(id, ErrSecretKeyNotFound), "key", key)
	}
	if str, ok := field.(string); ok {
		return str, nil
	}
	return fmt.Sprint(field), nil
}

// client returns the cached client, creating it on first use. A failed
// creation is not cached, so a later call with a live context retries it.
func (s *Secrets) client(ctx context.Context) (SecretsAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.api != nil {
		return s.api, nil
	}
	api, err := s.newAPI(ctx)
	if err != nil {
		return nil, err
	}
	s.api = api
	return api, nil
}

// fail translates err, naming the secret but never its value.
func (s *Secrets) fail(id string, err error) errors.TranslatedError {
	return errors.WithContext(errors.Translate(OpResolveSecret, err, SecretRules...), "secret", id)
}
