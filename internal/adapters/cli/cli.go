// Package cli is the command-line surface of the portal. It drives the same
// session manager and data clients as the HTTP surface, so a login from the
// CLI is visible to a running portal sharing the credential backend.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/healthportal-app/portal-client/internal/app/access"
	"github.com/healthportal-app/portal-client/internal/app/patient"
	"github.com/healthportal-app/portal-client/internal/app/profile"
	"github.com/healthportal-app/portal-client/internal/app/provider"
	"github.com/healthportal-app/portal-client/internal/app/session"
	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/ports/out/portalapi"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// App is everything the commands need. Serve runs the HTTP surface until ctx
// is done; it is only required for the serve command.
type App struct {
	Sessions *session.Manager
	Patient  *patient.Service
	Provider *provider.Service
	Profile  *profile.Service
	Serve    func(ctx context.Context) error

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, app App, args []string) int
	// needsSession commands wait for hydration before running.
	needsSession bool
}

func commands() []command {
	return []command{
		{name: "serve", summary: "run the portal HTTP surface (default)", run: runServe},
		{name: "login", summary: "log in with email and password", run: runLogin, needsSession: true},
		{name: "register", summary: "create an account and log in", run: runRegister, needsSession: true},
		{name: "logout", summary: "forget the stored credential", run: runLogout, needsSession: true},
		{name: "status", summary: "show the current session", run: runStatus, needsSession: true},
		{name: "dashboard", summary: "show the patient dashboard", run: runDashboard, needsSession: true},
		{name: "log", summary: "record today's steps and water intake", run: runDailyLog, needsSession: true},
		{name: "goals", summary: "set daily wellness goals", run: runGoals, needsSession: true},
		{name: "patients", summary: "list patients (doctors only)", run: runPatients, needsSession: true},
		{name: "patient", summary: "show one patient (doctors only)", run: runPatient, needsSession: true},
		{name: "profile", summary: "show or update the profile", run: runProfile, needsSession: true},
	}
}

// Run dispatches args (without the program name) and returns the exit code.
func Run(ctx context.Context, app App, args []string) int {
	name := "serve"
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}
	if name == "help" || name == "-h" || name == "--help" {
		usage(app.Out)
		return ExitOK
	}

	for _, c := range commands() {
		if c.name != name {
			continue
		}
		if c.needsSession {
			app.Sessions.Start(ctx)
			if _, err := app.Sessions.WaitReady(ctx); err != nil {
				fmt.Fprintf(app.Err, "session not ready: %v\n", err)
				return ExitError
			}
		}
		return c.run(ctx, app, args)
	}

	fmt.Fprintf(app.Err, "unknown command %q\n\n", name)
	usage(app.Err)
	return ExitUsage
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: portal <command> [flags]")
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range commands() {
		fmt.Fprintf(tw, "  %s\t%s\n", c.name, c.summary)
	}
	_ = tw.Flush()
}

func newFlags(app App, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(app.Err)
	return fs
}

func runServe(ctx context.Context, app App, args []string) int {
	fs := newFlags(app, "serve")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if app.Serve == nil {
		fmt.Fprintln(app.Err, "serve is not available")
		return ExitError
	}
	if err := app.Serve(ctx); err != nil {
		fmt.Fprintf(app.Err, "serve: %v\n", err)
		return ExitError
	}
	return ExitOK
}

func runLogin(ctx context.Context, app App, args []string) int {
	fs := newFlags(app, "login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (read from stdin when empty)")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	pw := *password
	if pw == "" {
		pw = readLine(app.In)
	}

	role, err := app.Sessions.Login(ctx, *email, pw)
	if err != nil {
		return authFailure(app, err)
	}
	fmt.Fprintf(app.Out, "logged in as %s (%s); landing %s\n", app.Sessions.Snapshot().Subject, role, access.LandingPath(role))
	return ExitOK
}

func runRegister(ctx context.Context, app App, args []string) int {
	fs := newFlags(app, "register")
	var reg domain.Registration
	var role string
	fs.StringVar(&reg.Email, "email", "", "account email")
	fs.StringVar(&reg.Password, "password", "", "password (read from stdin when empty)")
	fs.StringVar(&reg.FullName, "name", "", "full name")
	fs.StringVar(&role, "role", string(domain.RolePatient), "patient or doctor")
	fs.StringVar(&reg.LicenseNo, "license", "", "medical license number (doctors)")
	fs.BoolVar(&reg.DataUsageConsent, "consent", false, "accept the data usage terms")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	reg.Role = domain.Role(strings.ToLower(role))
	if reg.Password == "" {
		reg.Password = readLine(app.In)
	}

	got, err := app.Sessions.Register(ctx, reg)
	if err != nil {
		return authFailure(app, err)
	}
	fmt.Fprintf(app.Out, "registered and logged in as %s (%s); landing %s\n", app.Sessions.Snapshot().Subject, got, access.LandingPath(got))
	return ExitOK
}

func runLogout(ctx context.Context, app App, _ []string) int {
	app.Sessions.Logout(ctx)
	fmt.Fprintln(app.Out, "logged out")
	return ExitOK
}

func runStatus(_ context.Context, app App, _ []string) int {
	s := app.Sessions.Snapshot()
	if !s.IsAuthenticated() {
		fmt.Fprintln(app.Out, "not logged in")
		return ExitOK
	}
	tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "subject\t%s\n", s.Subject)
	fmt.Fprintf(tw, "role\t%s\n", s.Role)
	if !s.Expiry.IsZero() {
		fmt.Fprintf(tw, "expires\t%s\n", s.Expiry.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(tw, "landing\t%s\n", access.LandingPath(s.Role))
	_ = tw.Flush()
	return ExitOK
}

func runDashboard(ctx context.Context, app App, _ []string) int {
	if code, ok := requireLogin(app); !ok {
		return code
	}
	d, err := app.Patient.GetDashboard(ctx)
	if err != nil {
		return dataFailure(app, err)
	}
	return printJSON(app, d)
}

func runDailyLog(ctx context.Context, app App, args []string) int {
	fs := newFlags(app, "log")
	var e domain.DailyLogEntry
	fs.IntVar(&e.Steps, "steps", 0, "steps walked")
	fs.IntVar(&e.WaterIntakeML, "water", 0, "water intake in ml")
	fs.StringVar(&e.Date, "date", "", "YYYY-MM-DD (default today, UTC)")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if code, ok := requireLogin(app); !ok {
		return code
	}
	saved, err := app.Patient.SubmitDailyLog(ctx, e)
	if err != nil {
		return dataFailure(app, err)
	}
	fmt.Fprintf(app.Out, "logged %d steps and %d ml for %s\n", saved.Steps, saved.WaterIntakeML, saved.Date)
	return ExitOK
}

func runGoals(ctx context.Context, app App, args []string) int {
	fs := newFlags(app, "goals")
	var g domain.WellnessGoals
	fs.IntVar(&g.Steps, "steps", 0, "daily step goal")
	fs.Float64Var(&g.SleepHours, "sleep", 0, "nightly sleep goal in hours")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if code, ok := requireLogin(app); !ok {
		return code
	}
	if err := app.Patient.UpdateGoals(ctx, g); err != nil {
		return dataFailure(app, err)
	}
	fmt.Fprintln(app.Out, "goals updated")
	return ExitOK
}

func runPatients(ctx context.Context, app App, _ []string) int {
	if code, ok := requireDoctor(app); !ok {
		return code
	}
	ps, err := app.Provider.ListPatients(ctx)
	if err != nil {
		return dataFailure(app, err)
	}
	if len(ps) == 0 {
		fmt.Fprintln(app.Out, "no patients")
		return ExitOK
	}
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Email < ps[j].Email })
	tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEMAIL\tTODAY\tCOMPLIANCE")
	for _, p := range ps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.Email, p.LatestWellnessGoalStatus, p.ComplianceStatus)
	}
	_ = tw.Flush()
	return ExitOK
}

func runPatient(ctx context.Context, app App, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(app.Err, "usage: portal patient <email>")
		return ExitUsage
	}
	if code, ok := requireDoctor(app); !ok {
		return code
	}
	d, err := app.Provider.GetPatientDetail(ctx, args[0])
	if err != nil {
		return dataFailure(app, err)
	}
	return printJSON(app, d)
}

func runProfile(ctx context.Context, app App, args []string) int {
	fs := newFlags(app, "profile")
	allergies := fs.String("allergies", "", "comma-separated allergies (empty string clears)")
	medications := fs.String("medications", "", "comma-separated medications (empty string clears)")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if code, ok := requireLogin(app); !ok {
		return code
	}

	var u domain.ProfileUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "allergies":
			u.Allergies = profile.ParseList(*allergies)
		case "medications":
			u.Medications = profile.ParseList(*medications)
		}
	})
	if !u.IsEmpty() {
		if err := app.Profile.UpdateProfile(ctx, u); err != nil {
			return dataFailure(app, err)
		}
		fmt.Fprintln(app.Out, "profile updated")
	}

	p, err := app.Profile.GetProfile(ctx)
	if err != nil {
		return dataFailure(app, err)
	}
	tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "name\t%s\n", p.FullName)
	fmt.Fprintf(tw, "email\t%s\n", p.Email)
	fmt.Fprintf(tw, "role\t%s\n", p.Role)
	if lic := p.License(); lic != "" {
		fmt.Fprintf(tw, "license\t%s\n", lic)
	}
	fmt.Fprintf(tw, "allergies\t%s\n", profile.FormatList(p.Allergies))
	fmt.Fprintf(tw, "medications\t%s\n", profile.FormatList(p.Medications))
	_ = tw.Flush()
	return ExitOK
}

// requireLogin mirrors the access gate for commands: anonymous sessions are
// told to log in instead of sending a request that would be rejected.
func requireLogin(app App) (int, bool) {
	if !app.Sessions.Snapshot().IsAuthenticated() {
		fmt.Fprintln(app.Err, "not logged in; run `portal login`")
		return ExitError, false
	}
	return ExitOK, true
}

func requireDoctor(app App) (int, bool) {
	if code, ok := requireLogin(app); !ok {
		return code, false
	}
	if app.Sessions.Snapshot().Role != domain.RoleDoctor {
		fmt.Fprintln(app.Err, "this command is for providers; try `portal dashboard`")
		return ExitError, false
	}
	return ExitOK, true
}

func authFailure(app App, err error) int {
	ae, ok := session.AsAuthError(err)
	if !ok {
		fmt.Fprintf(app.Err, "error: %v\n", err)
		return ExitError
	}
	fmt.Fprintln(app.Err, ae.Message)
	keys := make([]string, 0, len(ae.Fields))
	for k := range ae.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(app.Err, "  %s: %s\n", k, ae.Fields[k])
	}
	return ExitError
}

func dataFailure(app App, err error) int {
	if apiErr, ok := portalapi.AsError(err); ok && apiErr.IsAuthRejection() {
		fmt.Fprintln(app.Err, "your session is no longer valid and has been cleared; run `portal login`")
		return ExitError
	}
	if errors.Is(err, portalapi.ErrTransport) {
		fmt.Fprintln(app.Err, "the health portal is unreachable; try again later")
		return ExitError
	}
	fmt.Fprintf(app.Err, "error: %v\n", err)
	return ExitError
}

func printJSON(app App, v any) int {
	enc := json.NewEncoder(app.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(app.Err, "encode: %v\n", err)
		return ExitError
	}
	return ExitOK
}

func readLine(r io.Reader) string {
	if r == nil {
		return ""
	}
	line, _ := bufio.NewReader(r).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
