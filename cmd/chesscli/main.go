package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/benbeisheim/chessrules-backend/internal/chess"
	"github.com/benbeisheim/chessrules-backend/internal/render"
)

const usage = `commands:
  e2 e4 | e2e4   play a move
  moves e2       show where the piece on e2 can go
  fen            print the position
  quit`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("chesscli", flag.ContinueOnError)
	fen := fs.String("fen", chess.DefaultStartingPositionFEN, "starting position")
	noColor := fs.Bool("nocolor", false, "disable colored output")
	verbose := fs.Bool("v", false, "log rejected moves to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := []chess.Option{chess.WithFEN(*fen)}
	if *verbose {
		opts = append(opts, chess.WithLogger(log.New(os.Stderr, "chess: ", log.LstdFlags)))
	}
	board, err := chess.NewBoard(opts...)
	if err != nil {
		return err
	}

	r := render.New(*noColor)
	if err := r.Board(out, board, nil); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s to move\n", board.Turn())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		switch {
		case len(fields) == 0:
			continue
		case fields[0] == "quit" || fields[0] == "exit":
			return nil
		case fields[0] == "help":
			fmt.Fprintln(out, usage)
			continue
		case fields[0] == "fen":
			fmt.Fprintln(out, board.FEN())
			continue
		case fields[0] == "moves" && len(fields) == 2:
			at, err := chess.ParseCoordinate(fields[1])
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			if err := r.Board(out, board, chess.Destinations(board.LegalMoves(at))); err != nil {
				return err
			}
			continue
		}

		from, to, err := parseMove(fields)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		text := board.MoveText(from, to)
		if _, err := board.Move(from, to); err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		fmt.Fprintf(out, "move: %s\n", text)
		if err := r.Board(out, board, nil); err != nil {
			return err
		}

		side := board.Turn()
		switch {
		case board.IsCheckmate(side):
			fmt.Fprintln(out, "Checkmate! Game Over.")
			return nil
		case !board.HasLegalMove(side):
			fmt.Fprintln(out, "Stalemate! Game Over.")
			return nil
		case board.IsInCheck(side):
			fmt.Fprintf(out, "Check! %s to move\n", side)
		default:
			fmt.Fprintf(out, "%s to move\n", side)
		}
	}
	return scanner.Err()
}

var errUnrecognized = errors.New("unrecognized input, type help")

func parseMove(fields []string) (from, to chess.Coordinate, err error) {
	switch {
	case len(fields) == 2:
	case len(fields) == 1 && len(fields[0]) == 4:
		fields = []string{fields[0][:2], fields[0][2:]}
	default:
		return from, to, errUnrecognized
	}
	if from, err = chess.ParseCoordinate(fields[0]); err != nil {
		return from, to, err
	}
	to, err = chess.ParseCoordinate(fields[1])
	return from, to, err
}
