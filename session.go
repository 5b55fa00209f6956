package placescraper

import (
	"context"
	"fmt"
	"os"
	"path"
	"sync"

	cookiejar "github.com/orirawlings/persistent-cookiejar"
)

const (
	UserAgent_Chrome122 = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	UserAgent_default   = UserAgent_Chrome122
)

// Session holds browser and logging options shared by the drivers of one run.
type Session struct {
	Name          string // directory name to store session files(page snapshots and cookies)
	UserAgent     string // specify User-Agent
	FilePrefix    string // prefix to directory of session files
	invokeCount   int
	NotUseNetwork bool // replay previously saved page snapshots rather than driving a browser
	SaveToFile    bool // save a snapshot of every page the browser leaves
	Log           Logger
	jar           *cookiejar.Jar
	jarLoaded     bool
	mu            sync.Mutex
}

func NewSession(name string, log Logger) *Session {
	jar, _ := cookiejar.New(nil)
	return &Session{
		Name:      name,
		UserAgent: UserAgent_default,
		Log:       log,
		jar:       jar,
	}
}

func (session *Session) Printf(format string, a ...interface{}) {
	if session.Log != nil {
		session.Log.Printf(format, a...)
	}
}

func (session *Session) LoadCookie() error {
	if err := session.ensureDirectory(); err != nil {
		return err
	}
	filename := fmt.Sprintf("%v/cookie", session.getDirectory())

	jar, err := cookiejar.New(&cookiejar.Options{
		Filename:              filename,
		PersistSessionCookies: true,
	})
	if err == nil {
		session.mu.Lock()
		session.jar = jar
		session.jarLoaded = true
		session.mu.Unlock()
	}
	return err
}

// SaveCookie stores cookies to a file.
// must call LoadCookie() before call SaveCookie().
func (session *Session) SaveCookie() error {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.jar.Save()
}

func (session *Session) cookieJar() *cookiejar.Jar {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.jar
}

func (session *Session) cookieFileLoaded() bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.jarLoaded
}

func (session *Session) getDirectory() string {
	return fmt.Sprintf("%v%v", session.FilePrefix, session.Name)
}

func (session *Session) getHtmlFilename() string {
	return path.Join(session.getDirectory(), fmt.Sprintf("%v.html", session.invokeCount))
}

// nextHtmlFilename advances the page counter and returns the snapshot file name for it.
func (session *Session) nextHtmlFilename() string {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.invokeCount++
	return session.getHtmlFilename()
}

func (session *Session) ensureDirectory() error {
	dirname := session.getDirectory()
	if _, err := os.Stat(dirname); err != nil && os.IsNotExist(err) {
		if err := os.MkdirAll(dirname, os.FileMode(0744)); err != nil {
			return err
		}
	}
	return nil
}

// savePage stores a snapshot of a page with its metadata.
func (session *Session) savePage(html string, metadata PageMetadata) (string, error) {
	if err := session.ensureDirectory(); err != nil {
		return "", err
	}
	filename := session.nextHtmlFilename()
	session.Printf("**** SAVE to %v (%v bytes)", filename, len(html))
	if err := os.WriteFile(filename, []byte(html), os.FileMode(0644)); err != nil {
		return "", err
	}
	if err := savePageMetadata(filename, metadata); err != nil {
		return "", err
	}
	return filename, nil
}

// loadPage reads the next saved snapshot. The URL passed to it is ignored:
// snapshots are served in the order they were recorded.
func (session *Session) loadPage(ctx context.Context, _ string) (*Page, error) {
	filename := session.nextHtmlFilename()
	session.Printf("**** LOAD from %v", filename)
	body, err := os.ReadFile(filename)
	if err != nil {
		return nil, RetryAndRecordError{filename}
	}
	metadata, err := loadPageMetadata(filename)
	if err != nil {
		return nil, RetryAndRecordError{filename}
	}
	return NewPage(body, metadata.URL, session.Log)
}

// NewReplayDriver returns a driver serving the snapshots saved by a
// previous run with SaveToFile.
func (session *Session) NewReplayDriver() *StaticDriver {
	return NewStaticDriver(session.loadPage)
}

// NewDriver returns a replay driver when NotUseNetwork is set, a Chrome
// driver otherwise.
func (session *Session) NewDriver(options NewChromeOptions) (PageDriver, error) {
	if session.NotUseNetwork {
		return session.NewReplayDriver(), nil
	}
	driver, err := session.NewChromeOpt(options)
	if err != nil {
		return nil, err
	}
	return driver, nil
}
