package mmt

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrJarNotFound is returned when no mmt.jar can be located.
var ErrJarNotFound = errors.New("failed to locate mmt.jar")

// ErrMathHubNotFound is returned when no MathHub directory can be located.
var ErrMathHubNotFound = errors.New("failed to locate MathHub folder")

// Location is a resolved path plus how it was found.
type Location struct {
	Path   string
	Source string
}

// Env reads environment variables. os.Getenv satisfies it.
type Env func(key string) string

// LocateJar finds mmt.jar: $MMT_JAR, then $MMT_PATH/deploy/mmt.jar, then
// the usual checkouts below home.
func LocateJar(getenv Env, home string) (Location, error) {
	if jar := getenv("MMT_JAR"); jar != "" && isFile(jar) {
		return Location{Path: jar, Source: "Inferred from environment variable MMT_JAR"}, nil
	}
	if p := getenv("MMT_PATH"); p != "" {
		jar := filepath.Join(p, "deploy", "mmt.jar")
		if isFile(jar) {
			return Location{Path: jar, Source: "Inferred from environment variable MMT_PATH"}, nil
		}
	}
	if home != "" {
		for _, jar := range []string{
			filepath.Join(home, "MMT", "deploy", "mmt.jar"),
			filepath.Join(home, "MMT", "systems", "MMT", "deploy", "mmt.jar"),
		} {
			if isFile(jar) {
				return Location{Path: jar, Source: "Lucky guess"}, nil
			}
		}
	}
	return Location{}, ErrJarNotFound
}

// LocateMathHub finds the MathHub directory: $MATHHUB, then the mathpath
// entry of the mmtrc next to the jar, then MMT-content three levels above it.
func LocateMathHub(getenv Env, jar string) (Location, error) {
	if p := getenv("MATHHUB"); p != "" && isDir(p) {
		return Location{Path: p, Source: "Inferred from environment variable MATHHUB"}, nil
	}
	if jar == "" {
		return Location{}, ErrMathHubNotFound
	}
	jarDir := filepath.Dir(jar)
	if p, ok := mathpathFromRC(filepath.Join(jarDir, "mmtrc")); ok {
		return Location{Path: p, Source: "Inferred from mmtrc mathpath"}, nil
	}
	guess := filepath.Join(jarDir, "..", "..", "..", "MMT-content")
	if isDir(guess) {
		return Location{Path: filepath.Clean(guess), Source: "Guessed from location of mmt.jar"}, nil
	}
	return Location{}, ErrMathHubNotFound
}

func mathpathFromRC(rc string) (string, bool) {
	f, err := os.Open(rc)
	if err != nil {
		return "", false
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "mathpath ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && isDir(fields[1]) {
			return fields[1], true
		}
	}
	return "", false
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
