// Command pagestore inspects and manipulates a pagestore directory or
// database: scalar records, paginated lists, and bookkeeping metadata.
// CLI lists hold strings; element typing is a compile-time affair for
// library users.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"code.byted.org/khicago/pagestore"
)

const version = "0.1.0"

// CLI defines the command-line interface for pagestore.
var CLI struct {
	// Global flags
	Dir       string `name:"dir" short:"d" help:"Store directory or database path" default:".pagestore"`
	Driver    string `name:"driver" help:"Storage driver" enum:"fs,memory,badger,sqlite,pudge" default:"fs"`
	Codec     string `name:"codec" help:"Serialization codec" enum:"json,yaml,cbor" default:"json"`
	Config    string `name:"config" help:"TOML config file" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level" enum:"debug,info,warn,error" default:"warn"`
	LogFormat string `name:"log-format" help:"Log format" enum:"text,json" default:"text"`

	Put     PutCmd     `cmd:"" help:"Store a value under a key"`
	Get     GetCmd     `cmd:"" help:"Print the raw record stored under a key"`
	Del     DelCmd     `cmd:"" help:"Remove a key with all its pages and metadata"`
	Has     HasCmd     `cmd:"" help:"Check whether a base record exists"`
	Keys    KeysCmd    `cmd:"" help:"List every record key, pages and metadata included"`
	Clear   ClearCmd   `cmd:"" help:"Remove every record in the store"`
	List    ListGroup  `cmd:"" help:"Paginated list operations (append, all, page, remove, save, stat)"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// ListGroup contains paginated list operations.
type ListGroup struct {
	Append ListAppendCmd `cmd:"" help:"Append items to a list"`
	All    ListAllCmd    `cmd:"" help:"Print the full list"`
	Page   ListPageCmd   `cmd:"" help:"Print one page of a list"`
	Remove ListRemoveCmd `cmd:"" help:"Remove the newest matching item from a list"`
	Save   ListSaveCmd   `cmd:"" help:"Replace a list wholesale"`
	Stat   ListStatCmd   `cmd:"" help:"Print list bookkeeping metadata"`
}

// appEnv carries the opened store into command Run methods via kong.Bind.
type appEnv struct {
	ctx   context.Context
	store *pagestore.Store
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("pagestore"),
		kong.Description("File-backed key/value store with paginated lists."),
		kong.UsageOnError(),
	)

	if CLI.Config != "" {
		cfg, err := loadConfig(CLI.Config)
		if err != nil {
			fmt.Fprintln(os.Stderr, "pagestore:", err)
			os.Exit(1)
		}
		applyConfig(cfg)
	}

	logger := setupLogger(CLI.LogLevel, CLI.LogFormat)

	store, err := openStore(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pagestore:", err)
		os.Exit(1)
	}
	defer store.Close()

	env := &appEnv{ctx: context.Background(), store: store}
	if err := kctx.Run(env); err != nil {
		fmt.Fprintln(os.Stderr, "pagestore:", err)
		os.Exit(1)
	}
}

// applyConfig fills global flags still at their defaults from the config
// file. Explicit flags win.
func applyConfig(cfg *Config) {
	if cfg.Dir != "" && CLI.Dir == ".pagestore" {
		CLI.Dir = cfg.Dir
	}
	if cfg.Driver != "" && CLI.Driver == "fs" {
		CLI.Driver = cfg.Driver
	}
	if cfg.Codec != "" && CLI.Codec == "json" {
		CLI.Codec = cfg.Codec
	}
	if cfg.Logging.Level != "" && CLI.LogLevel == "warn" {
		CLI.LogLevel = cfg.Logging.Level
	}
	if cfg.Logging.Format != "" && CLI.LogFormat == "text" {
		CLI.LogFormat = cfg.Logging.Format
	}
}

func openStore(logger *slog.Logger) (*pagestore.Store, error) {
	var codec pagestore.Codec
	switch CLI.Codec {
	case "yaml":
		codec = pagestore.YAMLCodec{}
	case "cbor":
		codec = pagestore.CBORCodec{}
	default:
		codec = pagestore.JSONCodec{}
	}

	var (
		driver pagestore.Driver
		err    error
	)
	switch CLI.Driver {
	case "memory":
		driver = pagestore.NewMemory()
	case "badger":
		driver, err = pagestore.NewBadger(CLI.Dir)
	case "sqlite":
		driver, err = pagestore.NewSQLite(CLI.Dir)
	case "pudge":
		driver, err = pagestore.NewPudge(CLI.Dir)
	default:
		driver = pagestore.NewFilesystem(CLI.Dir)
	}
	if err != nil {
		return nil, err
	}

	return pagestore.New(
		pagestore.WithDriver(driver),
		pagestore.WithCodec(codec),
		pagestore.WithLogger(pagestore.NewSlogLogger(logger)),
	), nil
}

func newList(env *appEnv, key string, limit, batch int) *pagestore.List[string] {
	opts := []pagestore.ListOption{}
	if limit > 0 {
		opts = append(opts, pagestore.Limit(limit))
	}
	if batch > 0 {
		opts = append(opts, pagestore.Batch(batch))
	}
	return pagestore.NewList[string](env.store, key, opts...)
}

// PutCmd stores a scalar string or a raw JSON document under a key.
type PutCmd struct {
	Key   string `arg:"" help:"Record key"`
	Value string `arg:"" help:"Value to store"`
	JSON  bool   `help:"Treat value as a raw JSON document"`
}

func (c *PutCmd) Run(env *appEnv) error {
	if c.JSON {
		var v interface{}
		if err := json.Unmarshal([]byte(c.Value), &v); err != nil {
			return fmt.Errorf("invalid JSON value: %w", err)
		}
		return env.store.SaveObject(env.ctx, c.Key, v)
	}
	return env.store.SaveString(env.ctx, c.Key, c.Value)
}

// GetCmd prints the raw stored record.
type GetCmd struct {
	Key string `arg:"" help:"Record key"`
}

func (c *GetCmd) Run(env *appEnv) error {
	data, err := env.store.GetRaw(env.ctx, c.Key)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// DelCmd removes a key entirely.
type DelCmd struct {
	Key string `arg:"" help:"Record key"`
}

func (c *DelCmd) Run(env *appEnv) error {
	return env.store.Remove(env.ctx, c.Key)
}

// HasCmd reports whether a base record exists.
type HasCmd struct {
	Key string `arg:"" help:"Record key"`
}

func (c *HasCmd) Run(env *appEnv) error {
	fmt.Println(env.store.Contains(env.ctx, c.Key))
	return nil
}

// KeysCmd lists every record key.
type KeysCmd struct{}

func (c *KeysCmd) Run(env *appEnv) error {
	keys, err := env.store.Keys(env.ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}

// ClearCmd wipes the store.
type ClearCmd struct {
	Yes bool `help:"Confirm wiping every record" required:""`
}

func (c *ClearCmd) Run(env *appEnv) error {
	return env.store.Clear(env.ctx)
}

// ListAppendCmd appends items to a paginated list.
type ListAppendCmd struct {
	Key    string   `arg:"" help:"List key"`
	Items  []string `arg:"" help:"Items to append"`
	First  bool     `help:"Insert at the front of the active page"`
	Dedupe bool     `help:"Remove an equal existing item before inserting"`
	Limit  int      `help:"List size limit (evicts oldest page at the cap)"`
	Batch  int      `help:"Page size when the list is first created"`
}

func (c *ListAppendCmd) Run(env *appEnv) error {
	list := newList(env, c.Key, c.Limit, c.Batch)
	for _, item := range c.Items {
		var opts []pagestore.AppendOption[string]
		if c.First {
			opts = append(opts, pagestore.First[string]())
		}
		if c.Dedupe {
			opts = append(opts, pagestore.Dedupe[string](func(s string) bool { return s == item }))
		}
		if err := list.Append(env.ctx, item, opts...); err != nil {
			return err
		}
	}
	return nil
}

// ListAllCmd prints the full list, one item per line.
type ListAllCmd struct {
	Key  string `arg:"" help:"List key"`
	Desc bool   `help:"Walk pages from the newest backwards"`
}

func (c *ListAllCmd) Run(env *appEnv) error {
	list := newList(env, c.Key, 0, 0)
	var items []string
	if c.Desc {
		items = list.AllDesc(env.ctx)
	} else {
		items = list.All(env.ctx)
	}
	for _, item := range items {
		fmt.Println(item)
	}
	return nil
}

// ListPageCmd prints one page of the list with its pagination info.
type ListPageCmd struct {
	Key  string `arg:"" help:"List key"`
	N    int    `arg:"" help:"Logical page number (1-based)"`
	Desc bool   `help:"Page 1 is the physically last page"`
}

func (c *ListPageCmd) Run(env *appEnv) error {
	list := newList(env, c.Key, 0, 0)
	var page *pagestore.Paged[string]
	if c.Desc {
		page = list.PageDesc(env.ctx, c.N)
	} else {
		page = list.Page(env.ctx, c.N)
	}
	for _, item := range page.Items {
		fmt.Println(item)
	}
	fmt.Println(page.Pagination)
	return nil
}

// ListRemoveCmd removes the newest occurrence of an item.
type ListRemoveCmd struct {
	Key  string `arg:"" help:"List key"`
	Item string `arg:"" help:"Item to remove"`
}

func (c *ListRemoveCmd) Run(env *appEnv) error {
	list := newList(env, c.Key, 0, 0)
	removed := list.Remove(env.ctx, func(s string) bool { return s == c.Item })
	fmt.Println(removed)
	return nil
}

// ListSaveCmd replaces the list wholesale.
type ListSaveCmd struct {
	Key   string   `arg:"" help:"List key"`
	Items []string `arg:"" optional:"" help:"New list contents (empty removes the key)"`
	Limit int      `help:"List size limit (truncates longer input)"`
	Batch int      `help:"Page size"`
}

func (c *ListSaveCmd) Run(env *appEnv) error {
	list := newList(env, c.Key, c.Limit, c.Batch)
	items := c.Items
	if items == nil {
		items = []string{}
	}
	return list.Save(env.ctx, items)
}

// ListStatCmd prints the bookkeeping metadata of a list.
type ListStatCmd struct {
	Key string `arg:"" help:"List key"`
}

func (c *ListStatCmd) Run(env *appEnv) error {
	list := newList(env, c.Key, 0, 0)
	meta, err := list.Meta(env.ctx)
	if err != nil {
		return err
	}
	fmt.Printf("totalPages=%d itemCount=%d maxBatchSize=%d\n",
		meta.TotalPages, meta.ItemCount, meta.MaxBatchSize)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(env *appEnv) error {
	fmt.Println("pagestore", version)
	return nil
}

func setupLogger(levelName, format string) *slog.Logger {
	var level slog.Level
	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Fprint(os.Stderr, buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
