// Package sharepointtest provides an in-memory SharePoint REST site for tests.
package sharepointtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"jobposting-workers/internal/models"
)

const (
	// permission masks as returned by SharePoint for Contribute and Read
	contributeLow = "1011030767"
	readLow       = "138612833"
)

// Library is one list on the fake site.
type Library struct {
	Title        string
	RootPath     string
	Writable     bool
	Denied       bool
	ContentTypes []models.ContentType
	Choices      map[string][]string
}

// Server is a fake site rooted at SitePath.
type Server struct {
	*httptest.Server
	SitePath string

	mu         sync.Mutex
	libraries  map[string]*Library
	folders    map[string]int
	files      map[string]bool
	items      map[int]map[string]interface{}
	nextItemID int
	calls      []string
	failCopy   map[string]bool
	failUpdate bool
}

var (
	reList       = regexp.MustCompile(`^lists/getbytitle\('((?:[^']|'')*)'\)/(.+)$`)
	reField      = regexp.MustCompile(`^fields/getbyinternalnameortitle\('((?:[^']|'')*)'\)$`)
	reItem       = regexp.MustCompile(`^items\((\d+)\)$`)
	reFolder     = regexp.MustCompile(`^GetFolderByServerRelativePath\(decodedurl='((?:[^']|'')*)'\)/(Exists|ListItemAllFields|Files)$`)
	reAddFolder  = regexp.MustCompile(`^folders/addUsingPath\(decodedurl='((?:[^']|'')*)',overwrite=false\)$`)
	reCopyFile   = regexp.MustCompile(`^GetFileByServerRelativePath\(decodedurl='((?:[^']|'')*)'\)/copyToUsingPath\(decodedurl='((?:[^']|'')*)',bOverWrite=false\)$`)
	reUserPerms  = regexp.MustCompile(`^getusereffectivepermissions\(@u\)$`)
	unquoteQuote = strings.NewReplacer("''", "'")
)

// NewServer starts a fake site at "<server>/sites/hr".
func NewServer() *Server {
	s := &Server{
		SitePath:   "/sites/hr",
		libraries:  make(map[string]*Library),
		folders:    make(map[string]int),
		files:      make(map[string]bool),
		items:      make(map[int]map[string]interface{}),
		nextItemID: 1,
		failCopy:   make(map[string]bool),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// SiteURL is the absolute URL of the fake site.
func (s *Server) SiteURL() string {
	return s.URL + s.SitePath
}

// AddLibrary registers a library and its root folder. RootPath defaults to
// the site path plus the title.
func (s *Server) AddLibrary(lib Library) *Library {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lib.RootPath == "" {
		lib.RootPath = s.SitePath + "/" + lib.Title
	}
	l := lib
	s.libraries[lib.Title] = &l
	s.addFolderLocked(l.RootPath)
	return &l
}

// AddFolder creates a folder at a server-relative path.
func (s *Server) AddFolder(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addFolderLocked(p)
}

// AddFile creates a file at a server-relative path.
func (s *Server) AddFile(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[p] = true
}

// FailCopyTo makes copies to destinations with this file name fail.
func (s *Server) FailCopyTo(fileName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCopy[fileName] = true
}

// FailItemUpdates makes every list item update fail.
func (s *Server) FailItemUpdates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpdate = true
}

func (s *Server) HasFolder(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.folders[p]
	return ok
}

func (s *Server) HasFile(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[p]
}

// FilesIn lists file names directly under folder, sorted.
func (s *Server) FilesIn(folder string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for f := range s.files {
		if path.Dir(f) == folder {
			out = append(out, path.Base(f))
		}
	}
	sort.Strings(out)
	return out
}

// ItemFields returns the fields last merged into the folder's list item.
func (s *Server) ItemFields(folder string) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[s.folders[folder]]
}

// Calls returns the mutating operations received, in order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Server) addFolderLocked(p string) {
	if _, ok := s.folders[p]; ok {
		return
	}
	s.folders[p] = s.nextItemID
	s.nextItemID++
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	prefix := s.SitePath + "/_api/web/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeError(w, http.StatusNotFound, "unknown endpoint")
		return
	}
	endpoint := strings.TrimPrefix(r.URL.Path, prefix)

	s.mu.Lock()
	defer s.mu.Unlock()

	if m := reList.FindStringSubmatch(endpoint); m != nil {
		s.handleList(w, r, unquoteQuote.Replace(m[1]), m[2])
		return
	}
	if m := reFolder.FindStringSubmatch(endpoint); m != nil {
		s.handleFolder(w, unquoteQuote.Replace(m[1]), m[2])
		return
	}
	if m := reAddFolder.FindStringSubmatch(endpoint); m != nil && r.Method == http.MethodPost {
		p := unquoteQuote.Replace(m[1])
		s.calls = append(s.calls, "create-folder:"+p)
		if _, ok := s.folders[p]; ok {
			writeError(w, http.StatusBadRequest, "A file or folder with the name already exists")
			return
		}
		if _, ok := s.folders[path.Dir(p)]; !ok {
			writeError(w, http.StatusNotFound, "System.IO.DirectoryNotFoundException")
			return
		}
		s.addFolderLocked(p)
		writeJSON(w, map[string]interface{}{"ServerRelativeUrl": p})
		return
	}
	if m := reCopyFile.FindStringSubmatch(endpoint); m != nil && r.Method == http.MethodPost {
		src, dst := unquoteQuote.Replace(m[1]), unquoteQuote.Replace(m[2])
		s.calls = append(s.calls, "copy:"+dst)
		switch {
		case s.failCopy[path.Base(dst)]:
			writeError(w, http.StatusInternalServerError, "copy failed")
		case !s.files[src]:
			writeError(w, http.StatusNotFound, "System.IO.FileNotFoundException")
		case s.files[dst]:
			writeError(w, http.StatusBadRequest, "A file with the name already exists")
		default:
			s.files[dst] = true
			w.WriteHeader(http.StatusOK)
		}
		return
	}

	writeError(w, http.StatusNotFound, "unknown endpoint "+endpoint)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, title, rest string) {
	lib, ok := s.libraries[title]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("List '%s' does not exist at site", title))
		return
	}
	if lib.Denied {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	switch {
	case rest == "EffectiveBasePermissions" || reUserPerms.MatchString(rest):
		low := readLow
		if lib.Writable {
			low = contributeLow
		}
		writeJSON(w, map[string]interface{}{"High": "432", "Low": low})
	case rest == "RootFolder":
		writeJSON(w, map[string]interface{}{"ServerRelativeUrl": lib.RootPath})
	case rest == "ContentTypes":
		writeJSON(w, map[string]interface{}{"value": lib.ContentTypes})
	case reField.MatchString(rest):
		field := unquoteQuote.Replace(reField.FindStringSubmatch(rest)[1])
		choices, ok := lib.Choices[field]
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Column '%s' does not exist", field))
			return
		}
		writeJSON(w, map[string]interface{}{"Choices": choices})
	case reItem.MatchString(rest) && r.Method == http.MethodPost:
		id, _ := strconv.Atoi(reItem.FindStringSubmatch(rest)[1])
		s.calls = append(s.calls, fmt.Sprintf("update-item:%d", id))
		if s.failUpdate {
			writeError(w, http.StatusInternalServerError, "update failed")
			return
		}
		var fields map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.items[id] = fields
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusNotFound, "unknown list endpoint "+rest)
	}
}

func (s *Server) handleFolder(w http.ResponseWriter, p, op string) {
	id, exists := s.folders[p]
	switch op {
	case "Exists":
		writeJSON(w, map[string]interface{}{"value": exists})
	case "ListItemAllFields":
		if !exists {
			writeError(w, http.StatusNotFound, "System.IO.FileNotFoundException")
			return
		}
		writeJSON(w, map[string]interface{}{"Id": id})
	case "Files":
		if !exists {
			writeError(w, http.StatusNotFound, "System.IO.FileNotFoundException")
			return
		}
		var value []map[string]string
		for f := range s.files {
			if path.Dir(f) == p {
				value = append(value, map[string]string{"Name": path.Base(f), "ServerRelativeUrl": f})
			}
		}
		sort.Slice(value, func(i, j int) bool { return value[i]["Name"] < value[j]["Name"] })
		writeJSON(w, map[string]interface{}{"value": value})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json;odata=nometadata")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json;odata=nometadata")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"odata.error": map[string]interface{}{"message": map[string]string{"value": msg}},
	})
}
