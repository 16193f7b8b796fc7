package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/odyssey-erp/odyssey-admin/internal/console"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/roles"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/users"
)

var (
	errUsage     = errors.New("invalid usage")
	errForbidden = errors.New("not permitted")
)

// accessModule is the permission module that governs role and permission administration.
const accessModule = "User Management"

func run(ctx context.Context, env *environment, args []string) error {
	global := flag.NewFlagSet("odyssey-admin", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	actor := global.String("as", "", "operator name recorded on changes")
	operatorRole := global.Int64("as-role", 0, "operator role id; writes need its capability on "+accessModule)
	if err := global.Parse(args); err != nil {
		return err
	}
	if *operatorRole > 0 {
		env.operatorRole = *operatorRole
	}
	if global.NArg() == 0 {
		fmt.Fprint(env.out, usage)
		return errUsage
	}
	if *actor != "" {
		env.client = env.client.WithActor(*actor)
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "users":
		return listUsers(ctx, env, rest)
	case "roles":
		return listRoles(ctx, env, rest)
	case "permissions":
		return listPermissions(ctx, env, rest)
	case "role-create", "role-update":
		return saveRole(ctx, env, cmd == "role-update", rest)
	case "role-delete":
		if err := authorize(ctx, env, rbac.CapabilityDelete); err != nil {
			return err
		}
		return deleteByID(ctx, env, rest, env.client.DeleteRole)
	case "permission-create", "permission-update":
		return savePermission(ctx, env, cmd == "permission-update", rest)
	case "permission-delete":
		if err := authorize(ctx, env, rbac.CapabilityDelete); err != nil {
			return err
		}
		return deleteByID(ctx, env, rest, env.client.DeletePermission)
	case "dashboard":
		return showDashboard(ctx, env)
	case "jobs":
		return runJobs(ctx, env, rest)
	default:
		fmt.Fprint(env.out, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func pageFlags(name string) (*flag.FlagSet, *int, *int) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	page := fs.Int("page", 1, "page number")
	per := fs.Int("per", shared.DefaultResultsPerPage, "results per page")
	return fs, page, per
}

func listUsers(ctx context.Context, env *environment, args []string) error {
	fs, page, per := pageFlags("users")
	if err := fs.Parse(args); err != nil {
		return err
	}
	view := console.NewListView(console.FetchFunc[users.User](env.client.ListUsers), *per, env.logger)
	if err := view.Load(ctx, *page); err != nil {
		return err
	}
	snap := view.Snapshot()
	tw := table(env.out)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tACTIVE\tLOGINS")
	for _, u := range snap.Rows {
		role := "-"
		if u.Role != nil {
			role = u.Role.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%d\n", u.ID, u.FullName(), u.Email, role, u.IsActive, u.LoginCount)
	}
	return footer(tw, env.out, snap.State, snap.Pagination)
}

func listRoles(ctx context.Context, env *environment, args []string) error {
	fs, page, per := pageFlags("roles")
	if err := fs.Parse(args); err != nil {
		return err
	}
	view := console.NewListView(console.FetchFunc[roles.Role](env.client.ListRoles), *per, env.logger)
	if err := view.Load(ctx, *page); err != nil {
		return err
	}
	snap := view.Snapshot()
	tw := table(env.out)
	fmt.Fprintln(tw, "ID\tNAME\tACTIVE")
	for _, r := range snap.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%t\n", r.ID, r.Name, r.IsActive)
	}
	return footer(tw, env.out, snap.State, snap.Pagination)
}

func listPermissions(ctx context.Context, env *environment, args []string) error {
	fs, page, per := pageFlags("permissions")
	role := fs.String("role", "", "only permissions of this role id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	roleID, err := rbac.ParseRoleFilter(*role)
	if err != nil {
		return fmt.Errorf("-role: %w", err)
	}
	view := console.NewListView(func(ctx context.Context, p shared.PageRequest) (shared.Page[rbac.RolePermission], error) {
		return env.client.ListRolePermissions(ctx, p, roleID)
	}, *per, env.logger)
	if err := view.Load(ctx, *page); err != nil {
		return err
	}
	snap := view.Snapshot()
	tw := table(env.out)
	fmt.Fprintln(tw, "ID\tROLE\tMAIN MODULE\tMODULE\tVIEW\tCREATE\tUPDATE\tDELETE")
	for _, p := range snap.Rows {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.RoleID, p.MainModule, p.ModuleName,
			mark(p.ViewAccess), mark(p.CreateAccess), mark(p.UpdateAccess), mark(p.DeleteAccess))
	}
	return footer(tw, env.out, snap.State, snap.Pagination)
}

func saveRole(ctx context.Context, env *environment, update bool, args []string) error {
	fs := flag.NewFlagSet("role", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.Int64("id", 0, "role id")
	name := fs.String("name", "", "role name")
	inactive := fs.Bool("inactive", false, "mark the role inactive")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if update && *id <= 0 {
		return fmt.Errorf("%w: -id is required", errUsage)
	}
	if err := authorize(ctx, env, writeCapability(update)); err != nil {
		return err
	}

	var alert string
	form := console.NewRoleForm(env.client, nil, console.NotifierFunc(func(msg string) { alert = msg }), env.logger)
	if update {
		current, err := env.client.GetRole(ctx, *id)
		if err != nil {
			return err
		}
		form.OpenEdit(current)
	} else {
		form.OpenCreate()
	}
	fields := form.Fields()
	applyGiven(fs, map[string]func(){
		"name":     func() { fields.Name = strings.TrimSpace(*name) },
		"inactive": func() { fields.IsActive = !*inactive },
	})
	form.SetFields(fields)
	if err := form.Save(ctx); err != nil {
		return errors.New(alert)
	}
	fmt.Fprintln(env.out, "saved role", fields.Name)
	return nil
}

func savePermission(ctx context.Context, env *environment, update bool, args []string) error {
	fs := flag.NewFlagSet("permission", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.Int64("id", 0, "permission id")
	role := fs.Int64("role", 0, "role id")
	mainModule := fs.String("main", "", "main module")
	module := fs.String("module", "", "module name")
	view := fs.Bool("view", false, "grant view")
	create := fs.Bool("create", false, "grant create")
	upd := fs.Bool("update", false, "grant update")
	del := fs.Bool("delete", false, "grant delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if update && *id <= 0 {
		return fmt.Errorf("%w: -id is required", errUsage)
	}
	if err := authorize(ctx, env, writeCapability(update)); err != nil {
		return err
	}

	var alert string
	form := console.NewPermissionForm(env.client, nil, console.NotifierFunc(func(msg string) { alert = msg }), env.logger)
	if update {
		current, err := env.client.GetPermission(ctx, *id)
		if err != nil {
			return err
		}
		form.OpenEdit(current)
	} else {
		form.OpenCreate()
	}
	fields := form.Fields()
	applyGiven(fs, map[string]func(){
		"role":   func() { fields.RoleID = *role },
		"main":   func() { fields.MainModule = strings.TrimSpace(*mainModule) },
		"module": func() { fields.ModuleName = strings.TrimSpace(*module) },
		"view":   func() { fields.ViewAccess = *view },
		"create": func() { fields.CreateAccess = *create },
		"update": func() { fields.UpdateAccess = *upd },
		"delete": func() { fields.DeleteAccess = *del },
	})
	form.SetFields(fields)
	if err := form.Save(ctx); err != nil {
		return errors.New(alert)
	}
	fmt.Fprintln(env.out, "saved permission", fields.MainModule+"/"+fields.ModuleName)
	return nil
}

// applyGiven runs the setter of every flag present on the command line, leaving
// the other form fields as loaded.
func applyGiven(fs *flag.FlagSet, setters map[string]func()) {
	fs.Visit(func(f *flag.Flag) {
		if set, ok := setters[f.Name]; ok {
			set()
		}
	})
}

func writeCapability(update bool) rbac.Capability {
	if update {
		return rbac.CapabilityUpdate
	}
	return rbac.CapabilityCreate
}

// authorize hides write commands from an operator role lacking the capability.
// Without -as-role every command is allowed.
func authorize(ctx context.Context, env *environment, c rbac.Capability) error {
	if env.operatorRole <= 0 {
		return nil
	}
	check, err := env.client.CheckAccess(ctx, env.operatorRole, accessModule, c)
	if err != nil {
		return err
	}
	if !check.Allowed {
		return fmt.Errorf("%w: role %d may not %s in %s", errForbidden, env.operatorRole, c, accessModule)
	}
	return nil
}

func deleteByID(ctx context.Context, env *environment, args []string, del func(context.Context, int64) error) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.Int64("id", 0, "record id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: -id is required", errUsage)
	}
	if err := del(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(env.out, "deleted", *id)
	return nil
}

func showDashboard(ctx context.Context, env *environment) error {
	d := console.NewDashboard(env.client, shared.DefaultResultsPerPage, env.logger)
	if err := d.Load(ctx); err != nil {
		return err
	}
	if err := d.Users.Load(ctx, 1); err != nil {
		return err
	}
	p := d.Panels()
	charts := d.Charts()

	tw := table(env.out)
	fmt.Fprintf(tw, "Total users\t%d\n", p.Metrics.TotalUsers)
	fmt.Fprintf(tw, "Active roles\t%d\n", p.Metrics.ActiveRoles)
	fmt.Fprintln(tw, "\nUSERS BY ROLE\t")
	for i, label := range charts.UsersByRole.Labels {
		fmt.Fprintf(tw, "%s\t%d\n", label, charts.UsersByRole.Values[i])
	}
	fmt.Fprintln(tw, "\nACTIVITY\t")
	for i, label := range charts.ActivityCounts.Labels {
		fmt.Fprintf(tw, "%s\t%d\n", label, charts.ActivityCounts.Values[i])
	}
	return tw.Flush()
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func footer(tw *tabwriter.Writer, w io.Writer, state console.State, p shared.Pagination) error {
	if err := tw.Flush(); err != nil {
		return err
	}
	if state == console.StateEmpty {
		fmt.Fprintln(w, "(no results)")
	}
	_, err := fmt.Fprintln(w, "page "+strconv.Itoa(p.Page)+" of "+strconv.Itoa(max(p.TotalPages, 1))+", "+strconv.Itoa(p.Total)+" total")
	return err
}

func mark(v bool) string {
	if v {
		return "yes"
	}
	return "-"
}
