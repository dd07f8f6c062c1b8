/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"trace":   logrus.TraceLevel,
		"DEBUG":   logrus.DebugLevel,
		" warn ":  logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"bogus":   logrus.InfoLevel,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestNamedLoggerIsShared(t *testing.T) {
	a := NewLogger("SHARED")
	b := NewLogger("SHARED")
	require.Same(t, a, b)
	require.True(t, SetLoggerLevel("SHARED", "error"))
	require.Equal(t, logrus.ErrorLevel, a.GetLevel())
	require.False(t, SetLoggerLevel("MISSING", "error"))
}

func TestTextAndJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	ConfigureOutput(&buf)
	t.Cleanup(func() {
		ConfigureOutput(os.Stdout)
		ConfigureConsoleLogFormat("text")
	})

	l := NewLogger("FMT")
	l.SetLevel(logrus.InfoLevel)
	l.WithField("rows", 3).Info("searched")
	line := buf.String()
	require.Contains(t, line, "INFO")
	require.Contains(t, line, "FMT")
	require.Contains(t, line, "searched rows=3")

	buf.Reset()
	ConfigureConsoleLogFormat("json")
	l.WithField("rows", 4).Info("paged")
	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &rec))
	require.Equal(t, "paged", rec["message"])
	require.Equal(t, "FMT", rec["logger"])
	require.Equal(t, float64(4), rec["fields"].(map[string]interface{})["rows"])
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("MS_TEST_BOOL", "true")
	t.Setenv("MS_TEST_BAD", "nope")
	t.Setenv("MS_TEST_STR", "x")
	require.True(t, EnvDefaultBool("MS_TEST_BOOL", false))
	require.True(t, EnvDefaultBool("MS_TEST_BAD", true))
	require.False(t, EnvDefaultBool("MS_TEST_UNSET", false))
	require.Equal(t, "x", EnvDefaultString("MS_TEST_STR", "y"))
	require.Equal(t, "y", EnvDefaultString("MS_TEST_UNSET", "y"))
}
