// Command seed fills the configured store with demo users and a few months of
// activity so the dashboard charts have data to draw.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	"github.com/odyssey-erp/odyssey-admin/internal/app"
	"github.com/odyssey-erp/odyssey-admin/internal/roles"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/users"
)

type options struct {
	Users  int
	Months int
	Now    time.Time
}

type result struct {
	Users      int
	Skipped    int
	Activities int
}

func main() {
	if app.InTestMode() {
		return
	}
	var opts options
	flag.IntVar(&opts.Users, "users", 20, "demo users to create")
	flag.IntVar(&opts.Months, "months", 6, "months of activity to generate")
	flag.Parse()
	opts.Now = time.Now().UTC()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	ctx := shared.ContextWithActor(context.Background(), "seed")

	// Direct writes only; the queue may not be running.
	svc, err := app.NewServices(ctx, cfg, logger, app.ServiceOptions{SkipRedis: true})
	if err != nil {
		logger.Error("init services", slog.Any("error", err))
		os.Exit(1)
	}
	defer svc.Close()

	res, err := seed(ctx, svc, opts)
	if err != nil {
		logger.Error("seed", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Printf("✓ seeded %d users (%d existing), %d activities\n", res.Users, res.Skipped, res.Activities)
}

func seed(ctx context.Context, svc *app.Services, opts options) (result, error) {
	var res result
	rs, err := svc.Roles.All(ctx)
	if err != nil {
		return res, err
	}
	if len(rs) == 0 {
		active := true
		r, err := svc.Roles.Create(ctx, roles.RoleInput{Name: "Admin", IsActive: &active})
		if err != nil {
			return res, err
		}
		rs = []roles.Role{r}
	}

	names := make([]string, 0, opts.Users)
	for i := 1; i <= opts.Users; i++ {
		roleID := rs[(i-1)%len(rs)].ID
		active := i%4 != 0
		in := users.UserInput{
			FirstName:   "Demo",
			LastName:    fmt.Sprintf("User %02d", i),
			Email:       fmt.Sprintf("demo%02d@example.com", i),
			Job:         "Operator",
			RoleID:      &roleID,
			IsActive:    &active,
			IsConfirmed: true,
		}
		u, err := svc.Users.Create(ctx, in)
		switch {
		case errors.Is(err, shared.ErrDuplicate):
			res.Skipped++
			names = append(names, in.FirstName+" "+in.LastName)
			continue
		case err != nil:
			return res, fmt.Errorf("user %s: %w", in.Email, err)
		}
		res.Users++
		names = append(names, u.FullName())
	}
	if len(names) == 0 || opts.Months <= 0 {
		return res, nil
	}

	start := time.Date(opts.Now.Year(), opts.Now.Month(), 1, 9, 0, 0, 0, time.UTC).AddDate(0, -(opts.Months - 1), 0)
	for m := 0; m < opts.Months; m++ {
		month := start.AddDate(0, m, 0)
		// Activity grows month over month.
		for i := 0; i <= m; i++ {
			name := names[(m+i)%len(names)]
			entry := activities.Entry{Action: "Login", User: name, At: month.Add(time.Duration(i) * time.Hour)}
			if err := svc.Activities.Record(ctx, entry); err != nil {
				return res, err
			}
			res.Activities++
		}
	}
	return res, nil
}
