package provision

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/devicehub/internal/domain/models"
)

// Defaults reproduce the devices bootstrap as it was first deployed.
const (
	DefaultDatabase = "devices"
	DefaultUser     = "admin"
	DefaultRole     = "readWrite"

	// PlaceholderPassword is the development password. It must be replaced
	// through configuration before provisioning a production server.
	PlaceholderPassword = "pw"
)

// ErrInvalidPlan is returned (wrapped with detail) when a plan fails local
// validation. Nothing is sent to the server in that case.
var ErrInvalidPlan = errors.New("invalid provisioning plan")

// RoleGrant is a (role, database-scope) pair granted to a user.
type RoleGrant struct {
	Role string `bson:"role"`
	DB   string `bson:"db"`
}

func (g RoleGrant) String() string {
	return g.Role + "@" + g.DB
}

// AdminUser is the credential principal created in the target database.
type AdminUser struct {
	Name     string
	Password string
	Roles    []RoleGrant
}

// Plan is the full declarative bootstrap: one user and a list of empty
// collections in a single database.
type Plan struct {
	Database    string
	User        AdminUser
	Collections []string
}

// DefaultPlan returns the devices bootstrap: user admin with readWrite on
// devices, and the temp_sensor, humidity_sensor and lights collections.
func DefaultPlan() Plan {
	return Plan{
		Database: DefaultDatabase,
		User: AdminUser{
			Name:     DefaultUser,
			Password: PlaceholderPassword,
			Roles:    []RoleGrant{{Role: DefaultRole, DB: DefaultDatabase}},
		},
		Collections: []string{
			models.CollectionTempSensor,
			models.CollectionHumiditySensor,
			models.CollectionLights,
		},
	}
}

// Validate checks the plan without contacting the server.
func (p Plan) Validate() error {
	var problems []string

	if strings.TrimSpace(p.Database) == "" {
		problems = append(problems, "database name is empty")
	} else if strings.ContainsAny(p.Database, `/\. "$`) {
		problems = append(problems, fmt.Sprintf("database name %q contains an invalid character", p.Database))
	}
	if strings.TrimSpace(p.User.Name) == "" {
		problems = append(problems, "user name is empty")
	}
	if p.User.Password == "" {
		problems = append(problems, "user password is empty")
	}
	for i, g := range p.User.Roles {
		if strings.TrimSpace(g.Role) == "" || strings.TrimSpace(g.DB) == "" {
			problems = append(problems, fmt.Sprintf("role %d must name both a role and a database", i))
		}
	}

	seen := make(map[string]bool, len(p.Collections))
	for _, c := range p.Collections {
		switch {
		case strings.TrimSpace(c) == "":
			problems = append(problems, "collection name is empty")
		case strings.HasPrefix(c, "system."):
			problems = append(problems, fmt.Sprintf("collection %q uses the reserved system. prefix", c))
		case strings.ContainsAny(c, "$\x00"):
			problems = append(problems, fmt.Sprintf("collection %q contains an invalid character", c))
		case seen[c]:
			problems = append(problems, fmt.Sprintf("collection %q is listed twice", c))
		}
		seen[c] = true
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, strings.Join(problems, "; "))
	}
	return nil
}

// ParseRoles parses a comma-separated list of role grants. Each entry is
// either "role@db" or a bare "role", which is scoped to defaultDB.
//
//	ParseRoles("readWrite, read@reporting", "devices")
//	  → [{readWrite devices} {read reporting}]
func ParseRoles(list, defaultDB string) ([]RoleGrant, error) {
	var out []RoleGrant
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		role, db, found := strings.Cut(part, "@")
		role = strings.TrimSpace(role)
		db = strings.TrimSpace(db)
		if !found {
			db = defaultDB
		}
		if role == "" || db == "" {
			return nil, fmt.Errorf("%w: malformed role %q", ErrInvalidPlan, part)
		}
		out = append(out, RoleGrant{Role: role, DB: db})
	}
	return out, nil
}

// ParseCollections splits a comma-separated list of collection names,
// keeping order and dropping blanks.
func ParseCollections(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
