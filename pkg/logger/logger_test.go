package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given each supported format", t, func() {
		for _, format := range []string{FormatText, FormatJSON, FormatConsole} {
			var buf bytes.Buffer
			err := Init(WithFormat(format), WithWriter(&buf))
			So(err, ShouldBeNil)
			So(Get(), ShouldNotBeNil)

			Get().Info(context.Background(), "hello", String("k", "v"))
			So(buf.String(), ShouldContainSubstring, "hello")
		}
	})

	Convey("Given an unknown format", t, func() {
		err := Init(WithFormat("xml"))
		So(err, ShouldNotBeNil)
	})
}

func TestLoggerFields(t *testing.T) {
	Convey("Given a JSON logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat(FormatJSON), WithWriter(&buf)), ShouldBeNil)

		Convey("When logging through a named logger", func() {
			Named("simmer").Warn(context.Background(), "team failed",
				String("team", "t1"),
				Uint64("schedules", 6),
				Bool("parallel", true),
				Error(errors.New("boom")),
			)
			out := buf.String()

			Convey("Then fields, component and source are present", func() {
				So(out, ShouldContainSubstring, `"component":"simmer"`)
				So(out, ShouldContainSubstring, `"team":"t1"`)
				So(out, ShouldContainSubstring, `"schedules":6`)
				So(out, ShouldContainSubstring, `"error":"boom"`)
				So(out, ShouldContainSubstring, `logger_test.go`)
			})
		})
	})
}

func TestLoggerLevel(t *testing.T) {
	Convey("Given a text logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("WARN"), ShouldBeNil)
			Get().Info(ctx, "quiet")
			Get().Warn(ctx, "loud")

			Convey("Then info is dropped", func() {
				So(strings.Contains(buf.String(), "quiet"), ShouldBeFalse)
				So(buf.String(), ShouldContainSubstring, "loud")
			})
		})

		Convey("When the level is unknown", func() {
			So(SetLevelString("chatty"), ShouldNotBeNil)
		})

		Reset(func() { _ = SetLevelString("info") })
	})

	Convey("Sync never fails", t, func() {
		So(Sync(), ShouldBeNil)
	})
}
