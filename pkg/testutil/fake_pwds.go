package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// fakePwds mimics the prompts and output of the pwds password safe. The
// safe file just holds the password.
const fakePwds = `#!/bin/sh
file=""
cmd=""
raw=0
while [ $# -gt 0 ]; do
	case "$1" in
	--file) file="$2"; shift 2 ;;
	--raw) raw=1; shift ;;
	*) cmd="$cmd $1"; shift ;;
	esac
done

if [ -z "$cmd" ] || [ -z "$file" ]; then
	echo "usage: pwds <command> [--raw] --file <safe>"
	exit 2
fi

read_secret() {
	stty -echo
	printf '%s' "$1"
	read -r secret
	stty echo
	echo
}

if [ -f "$file" ]; then
	read_secret "Enter password for $file: "
	if [ "$secret" != "$(cat "$file")" ]; then
		echo "error: wrong password"
		exit 1
	fi
else
	read_secret "Enter new password for $file: "
	first="$secret"
	read_secret "Confirm password for $file: "
	if [ "$first" != "$secret" ]; then
		echo "error: passwords do not match"
		exit 1
	fi
	printf '%s' "$first" > "$file"
fi

case "$cmd" in
" show")
	if [ "$raw" = 1 ]; then echo "[]"; else echo "no entries"; fi
	;;
" add")
	printf 'Name: '
	read -r name
	printf 'User: '
	read -r user
	echo "added $name for $user"
	;;
*)
	echo "unknown command:$cmd"
	exit 2
	;;
esac
`

// RequireShell skips the test unless a POSIX shell and stty are available
func RequireShell(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("PTY tests require Unix environment")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("PTY tests require /bin/sh")
	}
	if _, err := exec.LookPath("stty"); err != nil {
		t.Skip("PTY tests require stty")
	}
}

// WriteFakePwds writes an executable stand-in for pwds and returns its path
func WriteFakePwds(t testing.TB) string {
	t.Helper()
	RequireShell(t)

	path := filepath.Join(t.TempDir(), "pwds")
	// #nosec G306 - the fake must be executable
	if err := os.WriteFile(path, []byte(fakePwds), 0755); err != nil {
		t.Fatalf("failed to write fake pwds: %v", err)
	}
	return path
}
