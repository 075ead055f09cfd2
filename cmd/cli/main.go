package main

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"coursehub/internal/identity"
	"coursehub/pkg/card"
	"coursehub/pkg/config"
	"coursehub/pkg/models"

	"github.com/google/uuid"

	_ "coursehub/pkg/database"
)

// ANSI
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	White   = "\033[97m"
	Black   = "\033[30m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Red     = "\033[31m"
	Cyan    = "\033[36m"
	BgCyan  = "\033[46m"
	BgGreen = "\033[42m"
)

var services = []string{"auth", "students", "courses", "payments"}

var (
	dbs        = map[string]*sql.DB{}
	authURL    = env("AUTH_API_URL", "http://localhost:8081")
	coursesURL = env("COURSES_API_URL", "http://localhost:8082")
	tokens     *identity.TokenIssuer
)

func initDBConnections() {
	for _, svc := range services {
		cfg := config.LoadForService(svc)
		db, err := sql.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			continue
		}
		dbs[svc] = db
	}
	cfg := config.Load()
	tokens = identity.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
}

func main() {
	config.LoadDotEnv()
	initDBConnections()
	printBanner()
	shellLoop()
}

func shellLoop() {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("%s%s coursehub %s\n%s>%s ", BgGreen, Black, Reset, Cyan, Reset)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		parts := strings.Fields(input)

		switch parts[0] {
		case "exit", "quit", "q":
			fmt.Printf("\n%s%s  Bye %s\n\n", BgCyan, Black, Reset)
			return
		case "help", "?":
			printHelp()
		case "health", "h":
			printHealthChecks()
		case "queues", "rabbit":
			printRabbitQueues()
		case "up":
			shellExec("docker", "compose", "up", "-d", "--build")
		case "down":
			shellExec("docker", "compose", "down", "-v")
		case "logs":
			args := []string{"compose", "logs", "-f", "--tail=50"}
			shellExec("docker", append(args, parts[1:]...)...)

		case "register":
			if len(parts) < 6 {
				usage("register <first> <last> <email> <password> <yyyy-mm-dd>")
				continue
			}
			register(parts[1], parts[2], parts[3], parts[4], parts[5])
		case "login":
			if len(parts) < 3 {
				usage("login <email> <password>")
				continue
			}
			login(parts[1], parts[2])
		case "whoami":
			if len(parts) < 2 {
				usage("whoami <token>")
				continue
			}
			whoami(parts[1])
		case "add-course":
			if len(parts) < 3 {
				usage("add-course <price-in-cents> <name...>")
				continue
			}
			addCourse(parts[1], strings.Join(parts[2:], " "))
		case "enroll":
			if len(parts) < 7 {
				usage("enroll <course-id> <student-id> <card-name> <card-number> <mm/yy> <cvv>")
				continue
			}
			enroll(parts[1], models.EnrollRequest{
				StudentID:          parts[2],
				CardName:           parts[3],
				CardNumber:         parts[4],
				CardExpirationDate: parts[5],
				CardCVV:            parts[6],
			})
		case "card":
			if len(parts) < 2 {
				usage("card <number>")
				continue
			}
			checkCard(parts[1])

		case "accounts":
			query("auth", "SELECT id, user_name, first_name, last_name, is_admin, created_at FROM accounts ORDER BY created_at DESC LIMIT 20")
		case "students":
			query("students", "SELECT id, user_name, first_name, last_name, date_of_birth FROM students ORDER BY created_at DESC LIMIT 20")
		case "revocations":
			query("students", "SELECT event_id, processed_at FROM idempotency_keys ORDER BY processed_at DESC LIMIT 20")
		case "courses":
			query("courses", "SELECT id, name, price FROM courses ORDER BY name")
		case "enrollments":
			query("courses", "SELECT id, student_id, course_id, created_at FROM enrollments ORDER BY created_at DESC LIMIT 20")
		case "payments":
			query("payments", "SELECT id, course_id, student_id, total, card_last_four, status, created_at FROM payments ORDER BY created_at DESC LIMIT 20")
		case "sql":
			if len(parts) < 3 {
				usage("sql <auth|students|courses|payments> <query>")
				continue
			}
			query(parts[1], strings.Join(parts[2:], " "))

		default:
			// Pass through to system shell
			shellExecRaw(input)
		}

		fmt.Println()
	}
}

func printBanner() {
	fmt.Printf("\n  %s%sCourseHub shell%s  %stype 'help' for commands%s\n\n", Bold, White, Reset, Dim, Reset)
}

func printHelp() {
	fmt.Println()
	fmt.Printf("  %s%sCommands%s\n", Bold, White, Reset)
	fmt.Printf("  %shealth%s  h    health checks\n", Green, Reset)
	fmt.Printf("  %squeues%s       rabbitmq queues\n", Green, Reset)
	fmt.Printf("  %sup%s / %sdown%s    start or stop the stack\n", Green, Reset, Green, Reset)
	fmt.Printf("  %slogs%s [svc]   tail logs\n", Green, Reset)
	fmt.Println()
	fmt.Printf("  %s--- Sagas ---%s\n", Dim, Reset)
	fmt.Printf("  %sregister%s     <first> <last> <email> <password> <yyyy-mm-dd>\n", Green, Reset)
	fmt.Printf("  %slogin%s        <email> <password>\n", Green, Reset)
	fmt.Printf("  %swhoami%s       <token>\n", Green, Reset)
	fmt.Printf("  %sadd-course%s   <price-in-cents> <name...>\n", Green, Reset)
	fmt.Printf("  %senroll%s       <course-id> <student-id> <card-name> <card-number> <mm/yy> <cvv>\n", Green, Reset)
	fmt.Printf("  %scard%s         <number>  luhn check\n", Green, Reset)
	fmt.Println()
	fmt.Printf("  %s--- Data ---%s\n", Dim, Reset)
	fmt.Printf("  %saccounts  students  revocations  courses  enrollments  payments%s\n", Green, Reset)
	fmt.Printf("  %ssql%s <service> <query>\n", Green, Reset)
	fmt.Println()
	fmt.Printf("  %sAnything else runs in the system shell.%s\n", Dim, Reset)
}

func printHealthChecks() {
	fmt.Printf("  %s%sHealth%s\n", Bold, White, Reset)

	endpoints := []struct {
		name string
		url  string
	}{
		{"auth", authURL + "/health"},
		{"courses", coursesURL + "/health"},
		{"rabbitmq", env("RABBITMQ_UI_URL", "http://localhost:15672/")},
	}

	client := http.Client{Timeout: 2 * time.Second}
	for _, ep := range endpoints {
		resp, err := client.Get(ep.url)
		if err != nil {
			fmt.Printf("  %s[-]%s %-12s %soffline%s\n", Red, Reset, ep.name, Red, Reset)
			continue
		}
		resp.Body.Close()
		fmt.Printf("  %s[+]%s %-12s %sok%s\n", Green, Reset, ep.name, Green, Reset)
	}

	for _, svc := range services {
		db := dbs[svc]
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := fmt.Errorf("not configured")
		if db != nil {
			err = db.PingContext(ctx)
		}
		cancel()
		if err != nil {
			fmt.Printf("  %s[-]%s %-12s %s%v%s\n", Red, Reset, svc+"-db", Red, err, Reset)
			continue
		}
		fmt.Printf("  %s[+]%s %-12s %sok%s\n", Green, Reset, svc+"-db", Green, Reset)
	}
}

func printRabbitQueues() {
	fmt.Printf("  %s%sRabbitMQ Queues%s\n", Bold, White, Reset)

	output := strings.TrimSpace(runCmd("docker", "compose", "exec", "-T", "rabbitmq",
		"rabbitmqctl", "list_queues", "name", "messages", "consumers", "--quiet"))
	if output == "" {
		fmt.Printf("  %s[-] rabbitmq not reachable%s\n", Dim, Reset)
		return
	}

	fmt.Printf("  %s%-40s %8s %10s%s\n", Dim, "QUEUE", "MSGS", "CONSUMERS", Reset)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		color := Green
		if fields[1] != "0" {
			color = Yellow
		}
		fmt.Printf("  %s%-40s %s%8s%s %10s\n", Dim, fields[0], color, fields[1], Reset, fields[2])
	}
}

func register(first, last, email, password, birth string) {
	dob, err := time.Parse("2006-01-02", birth)
	if err != nil {
		fmt.Printf("  %s[x] bad date: %v%s\n", Red, err, Reset)
		return
	}
	post(authURL+"/accounts", models.RegisterUserRequest{
		FirstName:   first,
		LastName:    last,
		UserName:    email,
		Password:    password,
		DateOfBirth: dob,
	})
}

func login(email, password string) {
	post(authURL+"/accounts/login", models.LoginRequest{UserName: email, Password: password})
}

func enroll(courseID string, req models.EnrollRequest) {
	post(coursesURL+"/courses/"+courseID+"/enrollments", req)
}

func whoami(token string) {
	claims, err := tokens.Parse(token)
	if err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
		return
	}
	fmt.Printf("  %s[ok]%s %s (%s) roles=%s expires=%s\n", Green, Reset,
		claims.UserName, claims.Subject, strings.Join(claims.Roles, ","), claims.ExpiresAt.Format(time.RFC3339))
}

func addCourse(price, name string) {
	cents, err := strconv.ParseInt(price, 10, 64)
	if err != nil || cents <= 0 {
		fmt.Printf("  %s[x] price must be a positive number of cents%s\n", Red, Reset)
		return
	}
	db := dbs["courses"]
	if db == nil {
		fmt.Printf("  %s[x] courses database not configured%s\n", Red, Reset)
		return
	}
	id := uuid.NewString()
	if _, err := db.Exec("INSERT INTO courses (id, name, price) VALUES ($1, $2, $3)", id, name, cents); err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
		return
	}
	fmt.Printf("  %s[ok] course created%s %s\n", Green, Reset, id)
}

func checkCard(number string) {
	if card.IsValidNumber(number) {
		fmt.Printf("  %s[ok] passes luhn%s\n", Green, Reset)
		return
	}
	fmt.Printf("  %s[x] fails luhn%s\n", Red, Reset)
}

func post(url string, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
		return
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
		return
	}
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)

	if resp.StatusCode < 300 {
		fmt.Printf("  %s[ok] %d%s\n  %s\n", Green, resp.StatusCode, Reset, buf.String())
	} else {
		fmt.Printf("  %s[x] %d%s %s\n", Red, resp.StatusCode, Reset, buf.String())
	}
}

func query(svc, q string) {
	db := dbs[svc]
	if db == nil {
		fmt.Printf("  %s[x] unknown or unconfigured service %q%s\n", Red, svc, Reset)
		return
	}
	rows, err := db.Query(q)
	if err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
		return
	}
	defer rows.Close()

	cols, _ := rows.Columns()
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "  %s%s%s\n", Dim, strings.Join(cols, "\t"), Reset)

	count := 0
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
			return
		}
		cells := make([]string, len(values))
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			cells[i] = fmt.Sprint(v)
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(cells, "\t"))
		count++
	}
	w.Flush()
	fmt.Printf("  %s(%d rows)%s\n", Dim, count, Reset)
}

func usage(s string) {
	fmt.Printf("  %sUsage: %s%s\n", Red, s, Reset)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func shellExec(name string, args ...string) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
	}
}

func shellExecRaw(input string) {
	shellExec("sh", "-c", input)
}

func runCmd(name string, args ...string) string {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return ""
	}
	return string(out)
}
