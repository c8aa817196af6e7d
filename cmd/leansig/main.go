// Command leansig is the command-line front end for the leansig hash-based
// signature scheme.
//
// Usage:
//
//	leansig keygen  --lifetime <epochs> --activation <e> --count <n> --out <path> [--encoding target-sum|winternitz] [--seed <hex32>] [--minimal]
//	leansig sign    --sk <path> --epoch <e> --msg <hex> --out <path> [--auto-advance]
//	leansig verify  --pk <path> --epoch <e> --msg <hex> --sig <path>
//	leansig inspect --key <path>
//
// Exit code 0 on success, 1 on any error. The caller is responsible for
// advancing a stored next-epoch counter before each sign invocation; the
// tool signs at exactly the epoch it is given.
package main

import (
	"fmt"
	"os"

	"github.com/eth2030/leansig/log"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0"
var version = "v0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. It accepts CLI
// arguments without the program name so it can be tested in isolation.
func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 1
	}

	logger := log.Default().Module("cli")

	var err error
	switch args[0] {
	case "keygen":
		err = cmdKeygen(args[1:])
	case "sign":
		err = cmdSign(args[1:])
	case "verify":
		err = cmdVerify(args[1:])
	case "inspect":
		err = cmdInspect(args[1:])
	case "version", "--version":
		fmt.Println("leansig", version)
		return 0
	case "help", "--help", "-h":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "leansig: unknown command %q\n", args[0])
		usage()
		return 1
	}
	if err != nil {
		logger.Error("command failed", "cmd", args[0], "err", err.Error())
		return 1
	}
	return 0
}

func usage() {
	fmt.Fprintln(os.Stderr, `leansig - generalized XMSS signatures over KoalaBear/Poseidon2

Commands:
  keygen   generate a key pair
  sign     sign a message at an epoch
  verify   verify a signature
  inspect  describe a serialized key
  version  print version`)
}
