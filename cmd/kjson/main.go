// kjson - kJSON codec CLI tool
//
// Usage:
//
//	kjson fmt [file]                Parse kJSON and pretty-print it
//	kjson compact [file]            Parse kJSON and print it on one line
//	kjson to-json [--extended] [file]    Convert kJSON to plain JSON
//	kjson from-json [--extended] [file]  Convert plain JSON to kJSON
//	kjson encode [file]             Encode kJSON text as kJSONB (binary on stdout)
//	kjson decode [file]             Decode kJSONB to kJSON text
//	kjson stream cat [--binary] [file]   Read a record stream and pretty-print each record
//	kjson version                   Print version info
//
// If no file is given, reads from stdin.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atikayda/kjson-sub001/kjson"
	"github.com/atikayda/kjson-sub001/stream"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "stream" {
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "kjson stream: missing subcommand (cat)")
			os.Exit(1)
		}
		subcmd := args[0]
		switch subcmd {
		case "cat":
			binaryMode, fileArg := parseArgs(args[1:])
			cmdStreamCat(openInput(fileArg), binaryMode)
		default:
			fmt.Fprintf(os.Stderr, "kjson stream: unknown subcommand: %s\n", subcmd)
			os.Exit(1)
		}
		return
	}

	extended, fileArg := parseArgs(args)
	input := openInput(fileArg)

	switch cmd {
	case "fmt":
		cmdFmt(input, true)
	case "compact":
		cmdFmt(input, false)
	case "to-json":
		cmdToJSON(input, extended)
	case "from-json":
		cmdFromJSON(input, extended)
	case "encode":
		cmdEncode(input)
	case "decode":
		cmdDecode(input)
	case "version", "-v", "--version":
		fmt.Printf("kjson %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

// parseArgs splits a flag (--extended or --binary, both boolean) from the
// optional file argument.
func parseArgs(args []string) (flagSet bool, fileArg string) {
	for _, arg := range args {
		switch {
		case arg == "--extended" || arg == "--binary":
			flagSet = true
		default:
			if !strings.HasPrefix(arg, "-") || arg == "-" {
				fileArg = arg
			}
		}
	}
	return flagSet, fileArg
}

func openInput(fileArg string) io.Reader {
	if fileArg == "" || fileArg == "-" {
		return os.Stdin
	}
	f, err := os.Open(fileArg)
	if err != nil {
		fatal("open file: %v", err)
	}
	return f
}

func printUsage() {
	fmt.Fprint(os.Stderr, `kjson - kJSON codec CLI tool

Usage:
  kjson fmt [file]                     Parse kJSON and pretty-print it
  kjson compact [file]                 Parse kJSON and print it on one line
  kjson to-json [--extended] [file]    Convert kJSON to plain JSON
  kjson from-json [--extended] [file]  Convert plain JSON to kJSON
  kjson encode [file]                  Encode kJSON text as kJSONB (binary on stdout)
  kjson decode [file]                  Decode kJSONB to kJSON text
  kjson stream cat [--binary] [file]   Read a record stream, pretty-print each record
  kjson version                        Print version info

Options:
  --extended   Use $kjson marker objects so BigInt, Decimal128, UUID, Instant,
               Duration, Binary and undefined survive the JSON round trip
  --binary     Treat the stream as length-prefixed kJSONB records instead of
               newline-delimited text

If no file is given, reads from stdin.

Examples:
  echo '{id: 1n, when: 2025-01-10T12:00:00Z}' | kjson fmt
  echo '{"big":"123"}' | kjson from-json
  kjson encode data.kjson > data.kjsonb
  kjson decode data.kjsonb
  kjson stream cat --binary records.kjsonb
`)
}

// cmdFmt: kJSON -> canonical kJSON, pretty or compact
func cmdFmt(r io.Reader, pretty bool) {
	v := parseInput(r)
	if pretty {
		fmt.Println(kjson.StringifyPretty(v))
	} else {
		fmt.Println(kjson.Stringify(v))
	}
}

// cmdToJSON: kJSON -> plain JSON
func cmdToJSON(r io.Reader, extended bool) {
	v := parseInput(r)
	out, err := kjson.ToJSONWithOpts(v, kjson.BridgeOpts{Extended: extended})
	if err != nil {
		fatal("convert to JSON: %v", err)
	}
	fmt.Println(string(out))
}

// cmdFromJSON: plain JSON -> kJSON
func cmdFromJSON(r io.Reader, extended bool) {
	data, err := io.ReadAll(r)
	if err != nil {
		fatal("read input: %v", err)
	}
	v, err := kjson.FromJSONWithOpts(data, kjson.BridgeOpts{Extended: extended})
	if err != nil {
		fatal("parse JSON: %v", err)
	}
	fmt.Println(kjson.Stringify(v))
}

// cmdEncode: kJSON text -> kJSONB bytes on stdout
func cmdEncode(r io.Reader) {
	v := parseInput(r)
	data, err := kjson.Encode(v)
	if err != nil {
		fatal("encode: %v", err)
	}
	if _, err := os.Stdout.Write(data); err != nil {
		fatal("write output: %v", err)
	}
}

// cmdDecode: kJSONB bytes -> kJSON text
func cmdDecode(r io.Reader) {
	data, err := io.ReadAll(r)
	if err != nil {
		fatal("read input: %v", err)
	}
	v, err := kjson.Decode(data)
	if err != nil {
		fatal("decode: %v", err)
	}
	fmt.Println(kjson.Stringify(v))
}

// cmdStreamCat: read a record stream and pretty-print each record
func cmdStreamCat(r io.Reader, binaryMode bool) {
	next := streamSource(r, binaryMode)
	recordNum := 0

	for {
		v, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fatal("record %d: %v", recordNum, err)
		}
		recordNum++
		fmt.Println(kjson.StringifyPretty(v))
	}

	fmt.Fprintf(os.Stderr, "--- %d records ---\n", recordNum)
}

func streamSource(r io.Reader, binaryMode bool) func() (*kjson.Value, error) {
	if binaryMode {
		br := stream.NewBinaryReader(r)
		return br.Next
	}
	tr := stream.NewReader(r)
	return tr.Next
}

func parseInput(r io.Reader) *kjson.Value {
	data, err := io.ReadAll(r)
	if err != nil {
		fatal("read input: %v", err)
	}
	v, err := kjson.Parse(string(data))
	if err != nil {
		fatal("%v", err)
	}
	return v
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "kjson: "+format+"\n", args...)
	os.Exit(1)
}
