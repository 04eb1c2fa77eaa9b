// Package nfsexport serves a materialized dataset tree read-only over
// NFS, so a pipeline host elsewhere on the network can mount it without
// the tool copying anything.
package nfsexport

import (
	"fmt"
	"net"

	billy "github.com/go-git/go-billy/v5"
	nfs "github.com/willscott/go-nfs"
	nfshelper "github.com/willscott/go-nfs/helpers"
)

// Server manages the NFS server lifecycle.
type Server struct {
	listener net.Listener
	port     int
}

// NewServer starts an NFS server on an ephemeral port exporting fs
// read-only.
func NewServer(fs billy.Filesystem) (*Server, error) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		return nil, fmt.Errorf("nfs listen: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	handler := nfshelper.NewNullAuthHandler(ReadOnly(fs))
	cacheHelper := nfshelper.NewCachingHandler(handler, 4096)

	go func() {
		_ = nfs.Serve(listener, cacheHelper)
	}()

	return &Server{listener: listener, port: port}, nil
}

// Port returns the TCP port the NFS server is listening on.
func (s *Server) Port() int {
	return s.port
}

// MountCommand returns an example mount invocation for the export.
func (s *Server) MountCommand(mountpoint string) string {
	return fmt.Sprintf("mount -t nfs -o port=%d,mountport=%d,vers=3,tcp,noresvport localhost:/ %s",
		s.port, s.port, mountpoint)
}

// Close stops the NFS server by closing the listener.
func (s *Server) Close() error {
	return s.listener.Close()
}
