// Package monitoring turns a running simulation into an HTTP server so that
// the engine and the suspend coordinator can be inspected and poked from
// outside.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/sarchlab/akitasync/monitoring/web"
	"github.com/sarchlab/akitasync/sim/id"
	"github.com/sarchlab/akitasync/sim/timing"
	"github.com/sarchlab/akitasync/suspend"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Engine is the part of the engine the monitor controls.
type Engine interface {
	timing.TimeTeller
	Pause()
	Continue()
}

// Coordinator is the part of the suspend coordinator the monitor exposes.
type Coordinator interface {
	Status() suspend.Status
	AsyncWakeup() bool
}

// Component is anything that can be inspected by name.
type Component interface {
	Name() string
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	engine      Engine
	coordinator Coordinator
	components  []Component
	portNumber  int
	listener    net.Listener
	server      *http.Server

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e Engine) {
	m.engine = e
}

// RegisterCoordinator registers the suspend coordinator.
func (m *Monitor) RegisterCoordinator(c Coordinator) {
	m.coordinator = c
}

// RegisterComponent register a component to be monitored.
func (m *Monitor) RegisterComponent(c Component) {
	m.components = append(m.components, c)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := newProgressBar(id.Generate(), name, total)

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	// The static file server below matches every path, so API method
	// mismatches must be answered by the API subrouter itself.
	api := r.PathPrefix("/api").Subrouter()
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	api.HandleFunc("/pause", m.pauseEngine).Methods(http.MethodPost)
	api.HandleFunc("/continue", m.continueEngine).Methods(http.MethodPost)
	api.HandleFunc("/now", m.now)
	api.HandleFunc("/suspend", m.suspendStatus)
	api.HandleFunc("/wake", m.wake).Methods(http.MethodPost)
	api.HandleFunc("/list_components", m.listComponents)
	api.HandleFunc("/component/{name}", m.listComponentDetails)
	api.HandleFunc("/field/{json}", m.listFieldValue)
	api.HandleFunc("/progress", m.listProgressBars)
	api.HandleFunc("/resource", m.listResources)
	api.HandleFunc("/profile", m.collectProfile)

	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed),
		http.StatusMethodNotAllowed)
}

// StartServer starts the monitor as a web server and returns the port it
// listens on.
func (m *Monitor) StartServer() int {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	port := listener.Addr().(*net.TCPAddr).Port
	fmt.Fprintf(
		os.Stderr,
		"Monitoring simulation with http://localhost:%d\n", port)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			dieOnErr(err)
		}
	}()

	return port
}

// StopServer stops the web server.
func (m *Monitor) StopServer() error {
	if m.server == nil {
		return nil
	}

	return m.server.Close()
}

// pauseEngine blocks while the engine sleeps, since the engine keeps its
// pause lock while the coordinator holds it asleep.
func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.Now()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

func (m *Monitor) suspendStatus(w http.ResponseWriter, _ *http.Request) {
	if m.coordinator == nil {
		http.Error(w, "no coordinator registered", http.StatusNotFound)
		return
	}

	bytes, err := json.Marshal(m.coordinator.Status())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type wakeRsp struct {
	Accepted bool `json:"accepted"`
}

func (m *Monitor) wake(w http.ResponseWriter, _ *http.Request) {
	if m.coordinator == nil {
		http.Error(w, "no coordinator registered", http.StatusNotFound)
		return
	}

	rsp := wakeRsp{Accepted: m.coordinator.AsyncWakeup()}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	bytes, err := json.Marshal(names)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) Component {
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Component not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Snapshot())
	}
	m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(bars)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	duration := time.Second
	if s := r.URL.Query().Get("seconds"); s != "" {
		seconds, err := strconv.ParseFloat(s, 64)
		if err != nil || seconds <= 0 {
			http.Error(w, "invalid seconds", http.StatusBadRequest)
			return
		}

		duration = time.Duration(seconds * float64(time.Second))
	}

	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(duration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
