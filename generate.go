package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/jaliph/qrrapido/controller"
	"github.com/jaliph/qrrapido/payload"
	"github.com/jaliph/qrrapido/qr"
)

// fieldFlags collects repeated -field name=value flags.
type fieldFlags payload.FieldSet

func (f fieldFlags) String() string {
	pairs := make([]string, 0, len(f))
	for k, v := range f {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (f fieldFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("field %q is not name=value", s)
	}
	f[name] = value
	return nil
}

type generateArgs struct {
	contentType string
	fields      fieldFlags
	size        int
	dark        string
	light       string
	out         string
	terminal    bool
}

func newGenerateCmd(stdout, stderr io.Writer) *ffcli.Command {
	args := &generateArgs{fields: fieldFlags{}}
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.StringVar(&args.contentType, "type", string(payload.ContentTypeURL), "content type: url, text, email, phone, sms, wifi or vcard")
	fs.Var(args.fields, "field", "field value as name=value, repeatable (e.g. -field url=https://example.com)")
	fs.IntVar(&args.size, "size", int(controller.SizeMedium), "image size in pixels: 200, 300 or 400")
	fs.StringVar(&args.dark, "dark", qr.DefaultColorDark, "module color")
	fs.StringVar(&args.light, "light", qr.DefaultColorLight, "background color")
	fs.StringVar(&args.out, "out", controller.DownloadFilename, "PNG output path, empty to skip")
	fs.BoolVar(&args.terminal, "terminal", true, "print the code to the terminal")
	return &ffcli.Command{
		Name:       "generate",
		ShortUsage: "qrrapido generate -type wifi -field wifiSSID=Casa -field wifiPassword=secreto",
		ShortHelp:  "Render a QR code to a PNG file and the terminal",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix("QRRAPIDO")},
		Exec: func(ctx context.Context, _ []string) error {
			return runGenerate(args, qr.NewRenderer(), stdout, stderr)
		},
	}
}

func runGenerate(args *generateArgs, enc qr.Encoder, stdout, stderr io.Writer) error {
	ct, err := payload.ParseContentType(args.contentType)
	if err != nil {
		return err
	}
	size, err := controller.ParseSize(args.size)
	if err != nil {
		return err
	}
	fields := payload.FieldSet(args.fields).Clone()
	if security, ok := fields[payload.FieldWiFiSecurity]; ok {
		if fields[payload.FieldWiFiSecurity], err = payload.ParseSecurity(security); err != nil {
			return err
		}
	}

	c := controller.New(enc,
		controller.WithSize(size),
		controller.WithNotifier(controller.NotifierFunc(func(message string) {
			fmt.Fprintln(stderr, message)
		})),
	)
	if err := c.SetColors(args.dark, args.light); err != nil {
		return err
	}
	if err := c.SelectType(ct); err != nil {
		return err
	}
	c.SetFields(fields)

	gen, err := c.Generate()
	if err != nil {
		var verr *payload.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("missing %s", verr.Field)
		}
		return err
	}

	if args.out != "" {
		err := c.Download(controller.DownloaderFunc(func(_ string, img *qr.Image) error {
			return os.WriteFile(args.out, img.PNG(), 0o644)
		}))
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", args.out, err)
		}
		fmt.Fprintf(stdout, "Saved %s (%dx%d)\n", args.out, gen.Image.Width, gen.Image.Height)
	}
	if args.terminal {
		qr.WriteTerminal(stdout, gen.Payload, qr.CorrectHigh)
	}
	return nil
}
