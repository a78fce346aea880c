// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package wheel

import "testing"

func TestParseFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		want     Info
		kind     Kind
		wantErr  bool
	}{
		{
			name:     "platform wheel",
			filename: "webdavclient-1.2.3-cp313-cp313-manylinux_2_17_x86_64.whl",
			want: Info{
				Distribution: "webdavclient",
				Version:      "1.2.3",
				PythonTag:    "cp313",
				ABITag:       "cp313",
				PlatformTag:  "manylinux_2_17_x86_64",
			},
			kind: KindPlatform,
		},
		{
			name:     "pure wheel",
			filename: "webdavclient-1.2.3-py3-none-any.whl",
			want: Info{
				Distribution: "webdavclient",
				Version:      "1.2.3",
				PythonTag:    "py3",
				ABITag:       "none",
				PlatformTag:  "any",
			},
			kind: KindPure,
		},
		{
			name:     "build tag",
			filename: "pkg-1.0-2-py3-none-any.whl",
			want: Info{
				Distribution: "pkg",
				Version:      "1.0",
				Build:        "2",
				PythonTag:    "py3",
				ABITag:       "none",
				PlatformTag:  "any",
			},
			kind: KindPure,
		},
		{
			name:     "unlabelled linux wheel",
			filename: "pkg-0.1.0-cp314-cp314-linux_x86_64.whl",
			want: Info{
				Distribution: "pkg",
				Version:      "0.1.0",
				PythonTag:    "cp314",
				ABITag:       "cp314",
				PlatformTag:  "linux_x86_64",
			},
			kind: KindPlatform,
		},
		{name: "not a wheel", filename: "pkg-1.0.tar.gz", wantErr: true},
		{name: "too few fields", filename: "pkg-1.0.whl", wantErr: true},
		{name: "too many fields", filename: "a-b-c-d-e-f-g.whl", wantErr: true},
		{name: "empty field", filename: "pkg--1-py3-none-any.whl", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			info, err := ParseFilename(test.filename)
			if test.wantErr {
				if err == nil {
					t.Fatalf("ParseFilename(%q) should fail", test.filename)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFilename(%q): %v", test.filename, err)
			}
			if *info != test.want {
				t.Errorf("ParseFilename(%q) = %+v, want %+v", test.filename, *info, test.want)
			}
			if info.Kind() != test.kind {
				t.Errorf("Kind() = %v, want %v", info.Kind(), test.kind)
			}
			if info.Filename() != test.filename {
				t.Errorf("Filename() = %q, want round-trip to %q", info.Filename(), test.filename)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	if KindPure.String() != "pure" || KindPlatform.String() != "platform" {
		t.Errorf("Kind strings = %q, %q", KindPure, KindPlatform)
	}
}
