// Package provision applies the declarative devices bootstrap to a MongoDB
// server: select the database, create one user with its role grants, then
// create each collection in order.
//
// Apply is fire-and-forget. It does not check for existing entities, does not
// retry, and does not roll back steps that already succeeded. A failing step
// ends the run and its error is returned exactly as the driver reported it.
package provision

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Apply runs the plan against client. The plan is validated locally first;
// an invalid plan returns ErrInvalidPlan and issues no commands.
func Apply(ctx context.Context, client *mongo.Client, plan Plan, logger *zap.Logger) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	start := time.Now()
	log := logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("database", plan.Database),
	)

	db := client.Database(plan.Database)
	log.Info("provisioning database",
		zap.String("user", plan.User.Name),
		zap.Strings("roles", roleStrings(plan.User.Roles)),
		zap.Strings("collections", plan.Collections))

	if err := createUser(ctx, db, plan.User); err != nil {
		log.Error("createUser failed",
			zap.String("user", plan.User.Name),
			zap.String("step", StepCreateUser),
			zap.Error(err))
		return err
	}
	log.Info("created user", zap.String("user", plan.User.Name))

	for _, name := range plan.Collections {
		if err := db.CreateCollection(ctx, name); err != nil {
			log.Error("createCollection failed",
				zap.String("collection", name),
				zap.String("step", StepCreateCollection),
				zap.Error(err))
			return err
		}
		log.Info("created collection", zap.String("collection", name))
	}

	log.Info("provisioning complete", zap.String("took", time.Since(start).String()))
	return nil
}

func createUser(ctx context.Context, db *mongo.Database, u AdminUser) error {
	roles := make(bson.A, 0, len(u.Roles))
	for _, g := range u.Roles {
		roles = append(roles, bson.D{
			{Key: "role", Value: g.Role},
			{Key: "db", Value: g.DB},
		})
	}
	cmd := bson.D{
		{Key: "createUser", Value: u.Name},
		{Key: "pwd", Value: u.Password},
		{Key: "roles", Value: roles},
	}
	var out bson.M
	return db.RunCommand(ctx, cmd).Decode(&out)
}

func roleStrings(roles []RoleGrant) []string {
	out := make([]string, 0, len(roles))
	for _, g := range roles {
		out = append(out, g.String())
	}
	return out
}
