// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package archive

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
)

type fakeDirMaker struct {
	existing map[string]bool
	denied   string
	made     []string
}

func (f *fakeDirMaker) Mkdir(dir string) (string, error) {
	switch {
	case f.existing[dir]:
		return "", errors.New("550 Create directory operation failed: File exists")
	case dir == f.denied:
		return "", errors.New("550 Permission denied")
	}
	f.made = append(f.made, dir)
	return dir, nil
}

func TestEnsureDir(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		existing []string
		want     []string
	}{
		{"absolute", "/srv/reports/A1", []string{"/srv", "/srv/reports"}, []string{"/srv/reports/A1"}},
		{"relative", "reports/A1", nil, []string{"reports", "reports/A1"}},
		{"all exist", "/srv/A1", []string{"/srv", "/srv/A1"}, nil},
		{"current dir", ".", nil, nil},
		{"root", "/", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDirMaker{existing: map[string]bool{}}
			for _, d := range tt.existing {
				fake.existing[d] = true
			}
			require.NoError(t, ensureDir(fake, tt.dir))
			assert.Equal(t, tt.want, fake.made)
		})
	}
}

func TestEnsureDir_OtherErrorsFail(t *testing.T) {
	fake := &fakeDirMaker{existing: map[string]bool{"/srv": true}, denied: "/srv/reports"}

	err := ensureDir(fake, "/srv/reports/A1")
	require.ErrorContains(t, err, "ftps mkdir /srv/reports")
	assert.Empty(t, fake.made)
}

func TestFTPSConnector_StoreHonoursCancelledContext(t *testing.T) {
	conn, err := NewFTPSConnector(config.FTPSConfig{Host: "127.0.0.1", User: "u", Password: "p", Port: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, conn.Store(ctx, "A1", "r.json", nil), context.Canceled)
}

func TestFTPSConnector_Defaults(t *testing.T) {
	conn, err := NewFTPSConnector(config.FTPSConfig{Host: "ftp.example.com", User: "u", Password: "p"})
	require.NoError(t, err)

	f := conn.(*ftpsConnector)
	assert.Equal(t, "ftp.example.com:21", f.addr)
	assert.Equal(t, "ftp.example.com", f.config.TLSConfig.ServerName)
}

func TestFTPSConnector_RequiresCredentials(t *testing.T) {
	_, err := NewFTPSConnector(config.FTPSConfig{Host: "ftp.example.com", User: "u"})
	assert.Error(t, err)
}
