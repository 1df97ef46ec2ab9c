// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC timezone to prevent drift bugs.
//  2. Load .env file via godotenv (non-fatal if absent).
//  3. Scan environment for _SSM_PARAM suffix variables.
//  4. If APP_ENV != "local", resolve SSM parameters via the SecretProvider
//     and inject the resolved values back into the environment.
//  5. Use envconfig to process struct tags and populate the Config struct.
//  6. Validate the struct using go-playground/validator.
//
// Failures are reported as types.AppError with config_* codes so the caller
// can classify them as configuration errors.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"stormsignal/internal/types"
)

// ssmParamSuffix is the environment variable suffix used to identify SSM
// parameter pointer variables. For example, OPENWEATHER_API_KEY_SSM_PARAM
// points to the SSM path for the OPENWEATHER_API_KEY secret.
const ssmParamSuffix = "_SSM_PARAM"

// localEnv is the APP_ENV value that bypasses SSM resolution.
const localEnv = "local"

// envLookup matches the signature of os.LookupEnv and allows injection for testing.
type envLookup func(key string) (string, bool)

// envSet matches the signature of os.Setenv and allows injection for testing.
type envSet func(key, value string) error

// environ matches the signature of os.Environ and allows injection for testing.
type environ func() []string

// loaderDeps holds the injectable dependencies for the loader, enabling
// testing without mutating global state.
type loaderDeps struct {
	lookupEnv envLookup
	setEnv    envSet
	environ   environ
}

// defaultDeps returns the standard OS-backed dependencies.
func defaultDeps() loaderDeps {
	return loaderDeps{
		lookupEnv: os.LookupEnv,
		setEnv:    os.Setenv,
		environ:   os.Environ,
	}
}

// LoadConfig loads and validates the evaluator configuration.
//
// The provider parameter is the SecretProvider to use for SSM resolution.
// For local development, the provider may be nil (SSM resolution is skipped
// when APP_ENV=local or no _SSM_PARAM variables are present).
func LoadConfig(provider SecretProvider) (*Config, error) {
	return loadConfigWithDeps(provider, defaultDeps())
}

// loadConfigWithDeps is the internal implementation of LoadConfig that
// accepts injectable dependencies for testing.
func loadConfigWithDeps(provider SecretProvider, deps loaderDeps) (*Config, error) {
	// Enforce UTC to prevent timestamp drift between invocations and logs.
	time.Local = time.UTC

	// Load .env file (non-fatal if absent). godotenv does NOT override
	// existing environment variables, preserving the priority chain.
	_ = godotenv.Load()

	appEnv, _ := deps.lookupEnv("APP_ENV")

	// Resolve _SSM_PARAM variables if non-local.
	if appEnv != localEnv {
		if err := resolveSSMParams(provider, deps); err != nil {
			return nil, err
		}
	}

	// The empty prefix "" means envconfig uses the exact tag values
	// (e.g., envconfig:"CITY_NAME" reads CITY_NAME directly).
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeConfigParsing,
			"failed to process environment configuration",
			err,
		)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		code := types.ErrCodeConfigValidation
		if hasMissingRequired(err) {
			code = types.ErrCodeConfigMissingValue
		}
		return nil, types.NewAppError(
			code,
			fmt.Sprintf("configuration validation failed: %s", missingFieldSummary(err)),
			err,
		)
	}

	return &cfg, nil
}

// hasMissingRequired reports whether any validation failure is a plain
// "required" violation, i.e. a mandatory value was absent rather than malformed.
func hasMissingRequired(err error) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return true
		}
	}
	return false
}

// missingFieldSummary renders a compact field list for the error message,
// e.g. "Weather.APIKey (required), Notify.TopicARN (required)".
func missingFieldSummary(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s (%s)", fe.StructNamespace(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}

// resolveSSMParams scans the environment for variables ending in _SSM_PARAM,
// fetches the corresponding secret values via the SecretProvider, and injects
// them back into the environment so that envconfig can process them.
//
// If the target variable is already set (direct env var or .env file), SSM
// resolution is skipped for that variable. This respects the priority chain:
// OS Environment > Dotenv > SSM.
func resolveSSMParams(provider SecretProvider, deps loaderDeps) error {
	type ssmBinding struct {
		targetEnvVar string // e.g., OPENWEATHER_API_KEY
		ssmPath      string // e.g., /prod/stormsignal/openweather/api-key
	}

	var bindings []ssmBinding
	ssmPathToTarget := make(map[string]string)

	for _, envEntry := range deps.environ() {
		eqIdx := strings.IndexByte(envEntry, '=')
		if eqIdx < 0 {
			continue
		}
		key := envEntry[:eqIdx]

		if !strings.HasSuffix(key, ssmParamSuffix) {
			continue
		}

		targetEnvVar := strings.TrimSuffix(key, ssmParamSuffix)

		// Skip if the target variable is already set (priority: Env > SSM).
		if _, exists := deps.lookupEnv(targetEnvVar); exists {
			continue
		}

		ssmPath := envEntry[eqIdx+1:]
		if ssmPath == "" {
			continue
		}

		bindings = append(bindings, ssmBinding{
			targetEnvVar: targetEnvVar,
			ssmPath:      ssmPath,
		})
		ssmPathToTarget[ssmPath] = targetEnvVar
	}

	if len(bindings) == 0 {
		return nil
	}

	if provider == nil {
		targetVars := make([]string, 0, len(bindings))
		for _, b := range bindings {
			targetVars = append(targetVars, b.targetEnvVar)
		}
		return types.NewAppError(
			types.ErrCodeConfigSecret,
			fmt.Sprintf("SecretProvider is required for non-local environments (need to resolve: %s)", strings.Join(targetVars, ", ")),
			nil,
		)
	}

	ssmPaths := make([]string, 0, len(bindings))
	for _, b := range bindings {
		ssmPaths = append(ssmPaths, b.ssmPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resolved, err := provider.GetParametersBatch(ctx, ssmPaths)
	if err != nil {
		return types.NewAppError(
			types.ErrCodeConfigSecret,
			fmt.Sprintf("failed to resolve %d SSM parameters", len(ssmPaths)),
			err,
		)
	}

	for ssmPath, value := range resolved {
		targetEnvVar, ok := ssmPathToTarget[ssmPath]
		if !ok {
			continue
		}
		if err := deps.setEnv(targetEnvVar, value); err != nil {
			return types.NewAppError(
				types.ErrCodeConfigSecret,
				fmt.Sprintf("failed to set resolved value for %s", targetEnvVar),
				err,
			)
		}
	}

	var missing []string
	for _, b := range bindings {
		if _, ok := resolved[b.ssmPath]; !ok {
			missing = append(missing, b.targetEnvVar)
		}
	}
	if len(missing) > 0 {
		return types.NewAppError(
			types.ErrCodeConfigSecret,
			fmt.Sprintf("SSM parameters not found for: %s", strings.Join(missing, ", ")),
			nil,
		)
	}

	return nil
}
