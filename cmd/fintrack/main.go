// Command fintrack is a terminal client for the fintrack API: it manages a
// local session, records transactions, and renders chart aggregates from a
// locally fetched snapshot without extra server round-trips.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fintrack/fintrack-be/internal/analytics"
	"github.com/fintrack/fintrack-be/internal/client"
	"github.com/fintrack/fintrack-be/internal/models"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: fintrack <command> [flags]

Commands:
  register   create an account and log in
  login      log in and store the session
  logout     clear the stored session
  add        record a transaction
  list       list transactions (one page)
  budgets    show budgets with spend status
  report     render aggregates from all fetched transactions
  watch      live-render aggregates, refreshing on server changes
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	server := os.Getenv("FINTRACK_SERVER")
	if server == "" {
		server = "http://localhost:8080"
	}
	home, _ := os.UserHomeDir()
	sessionPath := filepath.Join(home, ".fintrack", "session.json")

	c, err := client.New(server, sessionPath)
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "register":
		runRegister(ctx, c, os.Args[2:])
	case "login":
		runLogin(ctx, c, os.Args[2:])
	case "logout":
		if err := c.Logout(); err != nil {
			fatal(err)
		}
		fmt.Println("Session cleared.")
	case "add":
		runAdd(ctx, c, os.Args[2:])
	case "list":
		runList(ctx, c, os.Args[2:])
	case "budgets":
		runBudgets(ctx, c, os.Args[2:])
	case "report":
		runReport(ctx, c, os.Args[2:])
	case "watch":
		runWatch(ctx, c, os.Args[2:])
	default:
		usage()
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func prompt(label string) string {
	fmt.Print(label + ": ")
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func runRegister(ctx context.Context, c *client.Client, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	fs.Parse(args)

	if *name == "" {
		*name = prompt("Name")
	}
	if *email == "" {
		*email = prompt("Email")
	}
	password := prompt("Password")

	if err := c.Register(ctx, *name, *email, password); err != nil {
		fatal(err)
	}
	fmt.Printf("Registered and logged in as %s.\n", c.Session().User.Email)
}

func runLogin(ctx context.Context, c *client.Client, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	fs.Parse(args)

	if *email == "" {
		*email = prompt("Email")
	}
	password := prompt("Password")

	if err := c.Login(ctx, *email, password); err != nil {
		fatal(err)
	}
	fmt.Printf("Logged in as %s.\n", c.Session().User.Email)
}

func runAdd(ctx context.Context, c *client.Client, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	text := fs.String("text", "", "description")
	amount := fs.Float64("amount", 0, "amount (negative = expense)")
	category := fs.String("category", "", "category")
	date := fs.String("date", "", "date (YYYY-MM-DD, default today)")
	fs.Parse(args)

	var when time.Time
	if *date != "" {
		t, err := time.Parse("2006-01-02", *date)
		if err != nil {
			fatal(err)
		}
		when = t
	}

	tx, err := c.CreateTransaction(ctx, *text, *amount, *category, when)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Recorded %s: %.2f (%s)\n", tx.Text, tx.Amount, tx.Category)
}

func listFlags(fs *flag.FlagSet) *models.TransactionFilter {
	f := &models.TransactionFilter{}
	fs.StringVar(&f.Category, "category", "", "category substring filter")
	fs.StringVar(&f.Search, "search", "", "text/category substring filter")
	fs.StringVar(&f.SortBy, "sort", "", "date | amount | category")
	fs.IntVar(&f.Page, "page", 1, "page number")
	fs.IntVar(&f.Limit, "limit", 20, "page size")
	return f
}

func runList(ctx context.Context, c *client.Client, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	f := listFlags(fs)
	fs.Parse(args)

	page, err := c.ListTransactions(ctx, *f)
	if err != nil {
		fatal(err)
	}

	for _, tx := range page.Items {
		fmt.Printf("%s  %10.2f  %-16s  %s\n", tx.Date.Format("2006-01-02"), tx.Amount, tx.Category, tx.Text)
	}
	fmt.Printf("-- page %d/%d (%d total)\n", page.Page, page.Pages, page.Total)
}

func runBudgets(ctx context.Context, c *client.Client, args []string) {
	fs := flag.NewFlagSet("budgets", flag.ExitOnError)
	month := fs.String("month", "", "month filter (YYYY-MM)")
	fs.Parse(args)

	statuses, err := c.Budgets(ctx, *month)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("%-16s %-8s %10s %10s %10s %5s\n", "CATEGORY", "MONTH", "LIMIT", "SPENT", "REMAINING", "PCT")
	for _, s := range statuses {
		marker := ""
		if s.Remaining < 0 {
			marker = "  EXCEEDED"
		}
		fmt.Printf("%-16s %-8s %10.2f %10.2f %10.2f %4d%%%s\n",
			s.Category, s.Month, s.Limit, s.Spent, s.Remaining, s.Percentage, marker)
	}
}

func granularityFlag(fs *flag.FlagSet) *string {
	return fs.String("by", "month", "bucket granularity: day | week | month | year")
}

func parseGranularity(s string) analytics.Granularity {
	switch s {
	case "day":
		return analytics.Day
	case "week":
		return analytics.Week
	case "year":
		return analytics.Year
	default:
		return analytics.Month
	}
}

func runReport(ctx context.Context, c *client.Client, args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	by := granularityFlag(fs)
	year := fs.Int("year", 0, "restrict to a year")
	month := fs.Int("month", 0, "restrict to a month (1-12)")
	days := fs.Int("days", 0, "restrict to the last N days")
	fs.Parse(args)

	txs, err := c.AllTransactions(ctx, models.TransactionFilter{})
	if err != nil {
		fatal(err)
	}

	narrowed := analytics.Filter{
		Year:       *year,
		Month:      time.Month(*month),
		RecentDays: *days,
	}.Apply(txs)

	renderReport(narrowed, parseGranularity(*by))
}

func renderReport(txs []models.Transaction, g analytics.Granularity) {
	fmt.Println("== Spending over time ==")
	for _, p := range analytics.SpendOverTime(txs, g) {
		fmt.Printf("%-10s %10.2f\n", p.Bucket, p.Amount)
	}

	fmt.Println("\n== Expenses by category ==")
	for _, ct := range analytics.ExpenseByCategory(txs) {
		fmt.Printf("%-16s %10.2f\n", ct.Category, ct.Amount)
	}

	fmt.Println("\n== Income vs expense ==")
	fmt.Printf("%-10s %10s %10s %12s\n", "PERIOD", "INCOME", "EXPENSE", "BALANCE")
	for _, flow := range analytics.IncomeExpenseSeries(txs, g) {
		fmt.Printf("%-10s %10.2f %10.2f %12.2f\n", flow.Bucket, flow.Income, flow.Expense, flow.Balance)
	}
}

func runWatch(ctx context.Context, c *client.Client, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	by := granularityFlag(fs)
	fs.Parse(args)

	g := parseGranularity(*by)
	fmt.Println("Watching for changes (Ctrl-C to stop)...")

	err := c.Watch(ctx, models.TransactionFilter{}, func(txs []models.Transaction) {
		fmt.Printf("\n--- refreshed %s ---\n", time.Now().Format("15:04:05"))
		renderReport(txs, g)
	})
	if err != nil && ctx.Err() == nil {
		fatal(err)
	}
}
