package provision

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Report describes how far a database is from a plan. It is produced by
// Inspect and never modifies the server.
type Report struct {
	Database   string
	User       string
	UserExists bool

	// Roles held by the user; MissingRoles are plan grants it lacks.
	Roles        []RoleGrant
	MissingRoles []RoleGrant

	// Collections maps every collection in the database to its document count.
	Collections map[string]int64
	Missing     []string
}

// Satisfied reports whether every entity in the plan exists.
func (r Report) Satisfied() bool {
	return r.UserExists && len(r.MissingRoles) == 0 && len(r.Missing) == 0
}

// Extra returns collections present in the database but not in the plan.
func (r Report) Extra(plan Plan) []string {
	want := make(map[string]bool, len(plan.Collections))
	for _, c := range plan.Collections {
		want[c] = true
	}
	var out []string
	for name := range r.Collections {
		if !want[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

type usersInfoResult struct {
	Users []struct {
		User  string      `bson:"user"`
		DB    string      `bson:"db"`
		Roles []RoleGrant `bson:"roles"`
	} `bson:"users"`
}

// Inspect reads the user and collection catalog of plan.Database.
func Inspect(ctx context.Context, client *mongo.Client, plan Plan) (Report, error) {
	db := client.Database(plan.Database)
	rep := Report{
		Database:    plan.Database,
		User:        plan.User.Name,
		Collections: map[string]int64{},
	}

	cmd := bson.D{{Key: "usersInfo", Value: bson.D{
		{Key: "user", Value: plan.User.Name},
		{Key: "db", Value: plan.Database},
	}}}
	var info usersInfoResult
	if err := db.RunCommand(ctx, cmd).Decode(&info); err != nil {
		return Report{}, err
	}
	for _, u := range info.Users {
		if u.User == plan.User.Name && u.DB == plan.Database {
			rep.UserExists = true
			rep.Roles = u.Roles
		}
	}
	held := make(map[RoleGrant]bool, len(rep.Roles))
	for _, g := range rep.Roles {
		held[g] = true
	}
	for _, g := range plan.User.Roles {
		if !held[g] {
			rep.MissingRoles = append(rep.MissingRoles, g)
		}
	}

	names, err := db.ListCollectionNames(ctx, bson.M{"type": "collection"})
	if err != nil {
		return Report{}, err
	}
	for _, name := range names {
		n, err := db.Collection(name).CountDocuments(ctx, bson.M{})
		if err != nil {
			return Report{}, err
		}
		rep.Collections[name] = n
	}
	for _, c := range plan.Collections {
		if _, ok := rep.Collections[c]; !ok {
			rep.Missing = append(rep.Missing, c)
		}
	}

	return rep, nil
}
