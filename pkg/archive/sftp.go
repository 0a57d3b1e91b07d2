// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
)

const sftpDialTimeout = 10 * time.Second

type sftpConnector struct {
	addr     string
	user     string
	password string
	keyPath  string
	baseDir  string

	dial func(ctx context.Context) (*sftpSession, error)
}

// sftpSession owns the SFTP client and the SSH connection it runs over.
type sftpSession struct {
	*sftp.Client
	conn io.Closer
}

// Close ends the SFTP session, then the SSH connection.
func (s *sftpSession) Close() error {
	err := s.Client.Close()
	if s.conn != nil {
		err = errors.Join(err, s.conn.Close())
	}
	return err
}

// NewSFTPConnector validates cfg; connections are opened per Store.
func NewSFTPConnector(cfg config.SFTPConfig) (Connector, error) {
	if cfg.Host == "" || cfg.User == "" {
		return nil, fmt.Errorf("archive.sftp.host and archive.sftp.user required for sftp connector")
	}
	if cfg.Password == "" && cfg.KeyPath == "" {
		return nil, fmt.Errorf("sftp connector requires password or key")
	}
	port := cfg.Port
	if port == 0 {
		port = 22
	}
	s := &sftpConnector{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		user:     cfg.User,
		password: cfg.Password,
		keyPath:  cfg.KeyPath,
		baseDir:  cfg.BaseDir,
	}
	s.dial = s.dialSSH
	return s, nil
}

func (s *sftpConnector) Name() string {
	return "sftp"
}

func (s *sftpConnector) Store(ctx context.Context, assessmentID, name string, data []byte) error {
	session, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	target := remotePath(s.baseDir, assessmentID, name)
	if err := session.MkdirAll(path.Dir(target)); err != nil {
		return fmt.Errorf("sftp mkdir %s: %w", path.Dir(target), err)
	}
	f, err := session.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
	if err != nil {
		return fmt.Errorf("sftp open %s: %w", target, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("sftp write %s: %w", target, err)
	}
	// The server may only report a failed write when the handle is closed.
	if err := f.Close(); err != nil {
		return fmt.Errorf("sftp close %s: %w", target, err)
	}
	return nil
}

// authMethods builds the SSH auth methods, key first.
func authMethods(password, keyPath string) ([]ssh.AuthMethod, error) {
	var auths []ssh.AuthMethod
	if keyPath != "" {
		key, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse key: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}
	if password != "" {
		auths = append(auths, ssh.Password(password))
	}
	return auths, nil
}

func (s *sftpConnector) dialSSH(ctx context.Context) (*sftpSession, error) {
	auths, err := authMethods(s.password, s.keyPath)
	if err != nil {
		return nil, err
	}
	cfg := &ssh.ClientConfig{
		User: s.user,
		Auth: auths,
		// TODO: accept a known_hosts file via archive.sftp.known_hosts.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         sftpDialTimeout,
	}

	dialer := net.Dialer{Timeout: cfg.Timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("ssh dial: %w", err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, s.addr, cfg)
	if err != nil {
		netConn.Close()
		return nil, fmt.Errorf("ssh handshake: %w", err)
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)
	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("sftp session: %w", err)
	}
	return &sftpSession{Client: client, conn: sshClient}, nil
}
