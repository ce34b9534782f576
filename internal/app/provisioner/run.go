// Package provisioner is the command-line front end for the devices
// bootstrap. It loads configuration, connects, and either applies the plan or
// reports how far the server is from it.
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dalemusser/devicehub/internal/app/system/provision"
	"github.com/dalemusser/devicehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrNotProvisioned is returned in check-only mode when the plan is not
// fully present on the server.
var ErrNotProvisioned = errors.New("database is not fully provisioned")

// Run connects to MongoDB and applies cfg.Plan, or inspects it when
// cfg.CheckOnly is set. Apply errors are returned unmodified.
func Run(ctx context.Context, cfg Config, logger *zap.Logger, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Provision())
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Error("mongo connect failed", zap.Error(err))
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("mongo disconnect failed", zap.Error(err))
		}
	}()

	return execute(ctx, client, cfg, logger, out)
}

func execute(ctx context.Context, client *mongo.Client, cfg Config, logger *zap.Logger, out io.Writer) error {
	if cfg.CheckOnly {
		rep, err := provision.Inspect(ctx, client, cfg.Plan)
		if err != nil {
			logger.Error("inspect failed", zap.Error(err), zap.String("step", provision.StepInspect))
			return err
		}
		WriteReport(out, cfg.Plan, rep)
		if !rep.Satisfied() {
			return ErrNotProvisioned
		}
		return nil
	}

	if err := provision.Apply(ctx, client, cfg.Plan, logger); err != nil {
		if provision.IsDuplicateUser(err) {
			logger.Warn("user already exists; the database looks provisioned (run with --check_only to verify)",
				zap.String("user", cfg.Plan.User.Name))
		}
		return err
	}
	fmt.Fprintf(out, "provisioned %s: user %s, collections %s\n",
		cfg.Plan.Database, cfg.Plan.User.Name, strings.Join(cfg.Plan.Collections, ", "))
	return nil
}

// WriteReport prints a human-readable summary of rep against plan.
func WriteReport(w io.Writer, plan provision.Plan, rep provision.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "database\t%s\n", rep.Database)
	if rep.UserExists {
		fmt.Fprintf(tw, "user\t%s\tpresent\n", rep.User)
	} else {
		fmt.Fprintf(tw, "user\t%s\tmissing\n", rep.User)
	}
	for _, g := range rep.MissingRoles {
		fmt.Fprintf(tw, "role\t%s\tmissing\n", g)
	}

	for _, name := range plan.Collections {
		if n, ok := rep.Collections[name]; ok {
			fmt.Fprintf(tw, "collection\t%s\t%d documents\n", name, n)
		} else {
			fmt.Fprintf(tw, "collection\t%s\tmissing\n", name)
		}
	}
	for _, name := range rep.Extra(plan) {
		fmt.Fprintf(tw, "collection\t%s\tnot in plan\n", name)
	}

	status := "ok"
	if !rep.Satisfied() {
		status = "incomplete"
	}
	fmt.Fprintf(tw, "status\t%s\n", status)
}
