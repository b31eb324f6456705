/*
Package devs3 is a tiny stand-in for an S3-compatible object store, so the
asset uploads work during local development without any cloud account.
Buckets are directories and objects are files inside them. It understands
just enough of the protocol for the assets package: bucket creation, object
put, get, head and delete.
*/
package devs3

import (
	"encoding/xml"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sciclub/clubsite/src/config"
	"github.com/sciclub/clubsite/src/logging"
	"github.com/sciclub/clubsite/src/website"
	"github.com/spf13/cobra"
)

func init() {
	s3Command := &cobra.Command{
		Use:   "s3 [storage folder]",
		Short: "Run a local S3 server that stores in the filesystem",
		Run: func(cmd *cobra.Command, args []string) {
			targetFolder := "./tmp/s3"
			if len(args) > 0 {
				targetFolder = args[0]
			}
			if err := os.MkdirAll(targetFolder, fs.ModePerm); err != nil {
				panic(err)
			}

			addr := ":9003"
			if endpoint, err := url.Parse(config.Config.S3.Endpoint); err == nil && endpoint.Port() != "" {
				addr = ":" + endpoint.Port()
			}

			logging.Info().Str("addr", addr).Str("folder", targetFolder).Msg("Serving local S3")
			err := http.ListenAndServe(addr, &Server{Dir: targetFolder})
			if err != nil {
				logging.Fatal().Err(err).Msg("local S3 server stopped")
			}
		},
	}

	website.WebsiteCommand.AddCommand(s3Command)
}

type Server struct {
	Dir string
}

type s3Error struct {
	XMLName xml.Name `xml:"Error"`
	Code    string   `xml:"Code"`
	Message string   `xml:"Message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	xml.NewEncoder(w).Encode(s3Error{Code: code, Message: message})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket, key := BucketKey(r.URL.Path)
	logging.Debug().
		Str("method", r.Method).
		Str("bucket", bucket).
		Str("key", key).
		Msg("local S3 request")

	if !validName(bucket) || (key != "" && !validName(key)) {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "bad bucket or key")
		return
	}

	bucketDir := filepath.Join(s.Dir, bucket)
	objectPath := filepath.Join(bucketDir, key)

	switch r.Method {
	case http.MethodPut:
		if key == "" {
			if err := os.MkdirAll(bucketDir, fs.ModePerm); err != nil {
				writeError(w, http.StatusInternalServerError, "InternalError", err.Error())
				return
			}
			w.Header().Set("Location", "/"+bucket)
			return
		}
		if _, err := os.Stat(bucketDir); errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist")
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "IncompleteBody", err.Error())
			return
		}
		if err := os.WriteFile(objectPath, body, 0644); err != nil {
			writeError(w, http.StatusInternalServerError, "InternalError", err.Error())
			return
		}
	case http.MethodGet, http.MethodHead:
		f, err := os.Open(objectPath)
		if err != nil || key == "" {
			writeError(w, http.StatusNotFound, "NoSuchKey", "The specified key does not exist")
			return
		}
		defer f.Close()
		if contentType := mime.TypeByExtension(filepath.Ext(key)); contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		stat, err := f.Stat()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "InternalError", err.Error())
			return
		}
		http.ServeContent(w, r, key, stat.ModTime(), f)
	case http.MethodDelete:
		if err := os.Remove(objectPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusInternalServerError, "InternalError", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusNotImplemented, "NotImplemented", "method not supported by the local S3 server")
	}
}

// Splits a path-style request path into bucket and key. Slashes in keys are
// flattened to "~" so every object is a single file in its bucket directory.
func BucketKey(path string) (string, string) {
	path = strings.TrimPrefix(path, "/")
	slashIdx := strings.IndexByte(path, '/')
	if slashIdx == -1 {
		return path, ""
	}
	return path[:slashIdx], strings.ReplaceAll(path[slashIdx+1:], "/", "~")
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
