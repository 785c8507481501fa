package toolchain

import "git.home.luguber.info/inful/cjbootstrap/internal/config"

// Options are the flags passed to "<build script> build".
type Options struct {
	NoTests      bool
	CJNative     bool
	Target       string
	EnableAssert bool
}

// OptionsFrom copies the configured build flags.
func OptionsFrom(f config.BuildFlags) Options {
	return Options{
		NoTests:      f.NoTests,
		CJNative:     f.CJNative,
		Target:       f.Target,
		EnableAssert: f.EnableAssert,
	}
}

// Args renders the options in the order the build script expects:
// --no-tests, --cjnative, -t <target>, --enable-assert.
func (o Options) Args() []string {
	args := make([]string, 0, 5)
	if o.NoTests {
		args = append(args, "--no-tests")
	}
	if o.CJNative {
		args = append(args, "--cjnative")
	}
	args = append(args, "-t", o.Target)
	if o.EnableAssert {
		args = append(args, "--enable-assert")
	}
	return args
}
