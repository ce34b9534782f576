// internal/app/provisioner/config.go
package provisioner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/devicehub/internal/app/system/provision"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvPrefix matches the service so one .env can drive both binaries.
const EnvPrefix = "DEVICES"

// ErrPlaceholderPassword is returned in prod when admin_password is unset.
var ErrPlaceholderPassword = errors.New("admin_password must be changed from the placeholder in prod")

// Config is the provisioner's resolved configuration.
type Config struct {
	MongoURI  string
	Plan      provision.Plan
	CheckOnly bool
}

var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI (needs userAdmin on the target database)"},
	{Name: "mongo_database", Default: provision.DefaultDatabase, Desc: "Database to provision"},
	{Name: "admin_user", Default: provision.DefaultUser, Desc: "Name of the user to create"},
	{Name: "admin_password", Default: provision.PlaceholderPassword, Desc: "Password of the user to create (must be changed in prod)"},
	{Name: "admin_roles", Default: provision.DefaultRole, Desc: "Comma list of role@db grants; a bare role applies to mongo_database"},
	{Name: "collections", Default: strings.Join(provision.DefaultPlan().Collections, ","), Desc: "Comma list of collections to create, in order"},
	{Name: "check_only", Default: false, Desc: "Report what exists instead of provisioning"},
}

// LoadConfig loads WAFFLE core config and the provisioner keys.
// Precedence: flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, Config, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvPrefix, appConfigKeys)
	if err != nil {
		return nil, Config{}, err
	}

	cfg, err := buildConfig(
		appValues.String("mongo_uri"),
		appValues.String("mongo_database"),
		appValues.String("admin_user"),
		appValues.String("admin_password"),
		appValues.String("admin_roles"),
		appValues.String("collections"),
		appValues.Bool("check_only"),
	)
	if err != nil {
		return nil, Config{}, err
	}
	return coreCfg, cfg, nil
}

func buildConfig(uri, database, user, password, roles, collections string, checkOnly bool) (Config, error) {
	database = strings.TrimSpace(database)
	grants, err := provision.ParseRoles(roles, database)
	if err != nil {
		return Config{}, err
	}
	return Config{
		MongoURI: uri,
		Plan: provision.Plan{
			Database: database,
			User: provision.AdminUser{
				Name:     strings.TrimSpace(user),
				Password: password,
				Roles:    grants,
			},
			Collections: provision.ParseCollections(collections),
		},
		CheckOnly: checkOnly,
	}, nil
}

// ValidateConfig checks the URI and the plan before anything is sent to the
// server. In prod the placeholder password is refused.
func ValidateConfig(coreCfg *config.CoreConfig, cfg Config, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(cfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if err := cfg.Plan.Validate(); err != nil {
		return err
	}
	if !cfg.CheckOnly && coreCfg != nil && coreCfg.Env == "prod" &&
		cfg.Plan.User.Password == provision.PlaceholderPassword {
		return ErrPlaceholderPassword
	}
	if cfg.Plan.User.Password == provision.PlaceholderPassword {
		logger.Warn("admin_password is the development placeholder")
	}
	return nil
}
