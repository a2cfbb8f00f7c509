package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/grupoquokka/diagnostico/internal/contact"
	"github.com/grupoquokka/diagnostico/internal/quiz"
	"github.com/grupoquokka/diagnostico/internal/resilience"
	"github.com/grupoquokka/diagnostico/internal/session"
	"github.com/spf13/cobra"
)

const (
	cmdResult = ":resultado"
	cmdReset  = ":reiniciar"
	cmdQuit   = ":salir"
)

var errQuit = errors.New("quit")

func newRunCmd(loadCatalog func() (*quiz.Catalog, error)) *cobra.Command {
	var (
		relayURL string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <slug>",
		Short: "Answer a diagnostic interactively",
		Long: `Asks every question of the diagnostic, shows the result and optionally
sends your contact details to the relay.

Answer with 2 (Sí), 1 (Parcial) or 0 (No). At any prompt you can type
:resultado to see the result, :reiniciar to start over or :salir to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}
			d, ok := catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown diagnostic %q, see `diagnostic list`", args[0])
			}

			clientCfg := resilience.DefaultClientConfig()
			clientCfg.Timeout = timeout
			client := resilience.NewClient(clientCfg, nil)
			defer client.Close()

			r := &runner{
				sess: session.New(d, contact.NewHTTPRelay(relayURL, client), session.CloseResult),
				in:   bufio.NewScanner(cmd.InOrStdin()),
				out:  cmd.OutOrStdout(),
			}
			err = r.run(cmd.Context())
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&relayURL, "relay-url", "http://localhost:8080/api/send", "Mail relay endpoint")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP client timeout for the relay request")

	return cmd
}

// runner drives one session over a line-based terminal.
type runner struct {
	sess *session.Session
	in   *bufio.Scanner
	out  io.Writer
	eof  bool
}

func (r *runner) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	d := r.sess.Diagnostic()
	fmt.Fprintf(r.out, "%s\n%s\n\n", d.Theme.Title, d.Theme.Subtitle)

	res, err := r.answerAll()
	if err != nil {
		return err
	}
	r.printResult(res)

	if !r.confirm("¿Quieres que te contactemos? (s/n): ") {
		return nil
	}
	return r.contact(ctx)
}

// answerAll asks until a result is shown. Diagnostics revealed on request
// wait for :resultado once every question is answered.
func (r *runner) answerAll() (quiz.Result, error) {
pass:
	for {
		requested := false
	questions:
		for _, q := range r.sess.Diagnostic().Questions {
			if _, answered := r.sess.Form().Value(q.ID); answered {
				continue
			}

			revealed, err := r.ask(q)
			switch {
			case errors.Is(err, errShowResult):
				requested = true
				break questions
			case errors.Is(err, errRestart):
				r.restart()
				continue pass
			case err != nil:
				return quiz.Result{}, err
			}
			fmt.Fprintln(r.out, r.sess.Progress())
			if revealed {
				res, _ := r.sess.Form().Result()
				return res, nil
			}
		}

		if !requested && r.sess.Diagnostic().Reveal == quiz.RevealOnRequest {
			err := r.awaitResult()
			if errors.Is(err, errRestart) {
				r.restart()
				continue
			}
			if err != nil {
				return quiz.Result{}, err
			}
		}

		res, err := r.sess.ShowResult()
		if err == nil {
			return res, nil
		}
		var incomplete *quiz.IncompleteError
		if !errors.As(err, &incomplete) {
			return quiz.Result{}, err
		}
		fmt.Fprintln(r.out, incomplete.Error())
	}
}

func (r *runner) restart() {
	r.sess.Reset()
	fmt.Fprintln(r.out, "Respuestas borradas.")
}

// awaitResult blocks until the user asks for the result, restarts or quits.
func (r *runner) awaitResult() error {
	for {
		fmt.Fprintf(r.out, "Escribe %s para ver tu resultado: ", cmdResult)
		line, err := r.readLine()
		if err != nil {
			return err
		}
		switch strings.ToLower(line) {
		case cmdResult:
			return nil
		case cmdReset:
			return errRestart
		case cmdQuit:
			return errQuit
		}
	}
}

var (
	errShowResult = errors.New("show result")
	errRestart    = errors.New("restart")
)

func (r *runner) ask(q quiz.Question) (bool, error) {
	for {
		fmt.Fprintf(r.out, "%d. %s\n   [2] Sí  [1] Parcial  [0] No: ", q.ID, q.Text)
		line, err := r.readLine()
		if err != nil {
			return false, err
		}

		switch strings.ToLower(line) {
		case cmdResult:
			return false, errShowResult
		case cmdReset:
			return false, errRestart
		case cmdQuit:
			return false, errQuit
		}

		value, ok := parseValue(line)
		if !ok {
			fmt.Fprintln(r.out, "Responde 2, 1 o 0.")
			continue
		}
		return r.sess.Answer(q.ID, value)
	}
}

func (r *runner) printResult(res quiz.Result) {
	b := res.Bucket
	fmt.Fprintf(r.out, "\n[%s] %s\n%s\nTotal: %d / %d\n\n", b.Badge, b.Heading, b.Detail, res.Total, res.Max)
}

func (r *runner) contact(ctx context.Context) error {
	for {
		fields := contact.Fields{
			Name:    r.prompt("Nombre*: "),
			Role:    r.prompt("Puesto: "),
			Company: r.prompt("Empresa: "),
			Email:   r.prompt("Correo*: "),
			Phone:   r.prompt("Celular: "),
		}
		if r.eof {
			return errQuit
		}

		out, _ := r.sess.Submit(ctx, fields)
		fmt.Fprintln(r.out, out.Message)

		switch out.Status {
		case contact.StatusSent:
			return nil
		case contact.StatusFailed:
			if !r.confirm("¿Intentar de nuevo? (s/n): ") {
				return nil
			}
		}
	}
}

func (r *runner) prompt(label string) string {
	fmt.Fprint(r.out, label)
	line, _ := r.readLine()
	return line
}

func (r *runner) confirm(label string) bool {
	answer := strings.ToLower(r.prompt(label))
	return answer == "s" || answer == "si" || answer == "sí"
}

func (r *runner) readLine() (string, error) {
	if !r.in.Scan() {
		r.eof = true
		if err := r.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return strings.TrimSpace(r.in.Text()), nil
}

// parseValue accepts the numeric value or the option label.
func parseValue(s string) (int, bool) {
	if v, err := strconv.Atoi(s); err == nil && quiz.ValidValue(v) {
		return v, true
	}
	for _, opt := range quiz.Options {
		if strings.EqualFold(s, opt.Label) {
			return opt.Value, true
		}
	}
	if strings.EqualFold(s, "si") {
		return quiz.ValueYes, true
	}
	return 0, false
}
