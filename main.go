package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/muesli/termenv"

	"github.com/ByLCY/linklabel/config"
	"github.com/ByLCY/linklabel/dsl"
	"github.com/ByLCY/linklabel/label"
	"github.com/ByLCY/linklabel/layout"
	"github.com/ByLCY/linklabel/renderer"
	canvasrenderer "github.com/ByLCY/linklabel/renderer/canvas"
	"github.com/ByLCY/linklabel/richtext"
)

// tapList 收集可重复的 -tap x,y 参数。
type tapList []layout.Point

func (t *tapList) String() string {
	parts := make([]string, 0, len(*t))
	for _, p := range *t {
		parts = append(parts, fmt.Sprintf("%g,%g", p.X, p.Y))
	}
	return strings.Join(parts, " ")
}

func (t *tapList) Set(v string) error {
	xs, ys, ok := strings.Cut(v, ",")
	if !ok {
		return fmt.Errorf("点击坐标需要 x,y 形式: %q", v)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return fmt.Errorf("无法解析 x 坐标 %q: %w", xs, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return fmt.Errorf("无法解析 y 坐标 %q: %w", ys, err)
	}
	*t = append(*t, layout.Point{X: x, Y: y})
	return nil
}

type options struct {
	input, output, configPath, debugPath string
	data                                 any
	taps                                 tapList
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "in", "examples/demo.label", "标签描述文件路径")
	flag.StringVar(&opts.output, "out", "output/demo.png", "输出路径（.png / .pdf）")
	flag.StringVar(&opts.configPath, "config", "", "覆盖文档 config 段的配置文件（.toml / .yaml / .json）")
	flag.StringVar(&opts.debugPath, "debug", "", "布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到文档的 JSON 数据，以 @ 开头时从文件读取")
	flag.Var(&opts.taps, "tap", "在视图坐标 x,y 处模拟一次点击，可重复")
	scale := flag.Float64("scale", 2, "PNG 每 pt 的像素数")
	watch := flag.Bool("watch", false, "文件变化时重新生成")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	data, err := loadData(*dataJSON)
	if err != nil {
		log.Fatalf("解析 data JSON 失败: %v", err)
	}
	opts.data = data

	format, err := renderer.FormatForPath(opts.output)
	if err != nil {
		log.Fatalf("%v", err)
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: filepath.Dir(opts.input),
		Format:  format,
		Scale:   *scale,
	})

	out := termenv.NewOutput(os.Stdout)
	if err := run(opts, r, out, logger); err != nil {
		log.Fatalf("生成标签失败: %v", err)
	}
	if *watch {
		if err := watchFiles(opts, r, out, logger); err != nil {
			log.Fatalf("监听文件失败: %v", err)
		}
	}
}

func loadData(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw = string(b)
	}
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return data, nil
}

// run 串联解析、配置、排版、绘制与点击模拟。
func run(opts options, r *canvasrenderer.Renderer, out *termenv.Output, logger *slog.Logger) error {
	file, err := os.Open(opts.input)
	if err != nil {
		return fmt.Errorf("无法打开标签描述文件 %s: %w", opts.input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析标签描述失败: %w", err)
	}
	compiled, err := dsl.Compile(doc, opts.data)
	if err != nil {
		return fmt.Errorf("编译标签描述失败: %w", err)
	}
	for _, path := range compiled.Missing {
		logger.Warn("数据中缺少占位符", slog.String("path", path))
	}

	cfg := config.Default()
	if err := config.Merge(&cfg, compiled.Config); err != nil {
		return err
	}
	if opts.configPath != "" {
		override, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		if err := config.Merge(&cfg, override); err != nil {
			return err
		}
	}

	l := label.New(
		label.WithMeasurer(r),
		label.WithLogger(logger),
		label.WithDelegate(label.DelegateFunc(func(link *url.URL, at layout.Point) {
			fmt.Fprintf(out, "%s %s @ (%g, %g)\n",
				out.String("点击链接").Foreground(termenv.ANSIGreen).Bold(), link, at.X, at.Y)
		})),
	)
	if err := cfg.Apply(l); err != nil {
		return fmt.Errorf("应用配置失败: %w", err)
	}
	l.SetAttributedText(compiled.Text)

	if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	img, err := l.Draw(r)
	if err != nil {
		return fmt.Errorf("渲染标签失败: %w", err)
	}
	if err := os.WriteFile(opts.output, img, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	fmt.Fprintf(out, "%s %s（%s）\n", out.String("已生成").Foreground(termenv.ANSIGreen), opts.output, r.Format())

	if opts.debugPath != "" {
		if err := writeDebug(l.Layout(), l.AttributedText(), opts.debugPath); err != nil {
			return err
		}
	}

	for _, p := range opts.taps {
		if l.TouchesBegan(p) == label.Forward {
			fmt.Fprintf(out, "%s (%g, %g)\n", out.String("未命中链接").Foreground(termenv.ANSIYellow), p.X, p.Y)
			continue
		}
		l.TouchesEnded(p)
	}
	return nil
}

func writeDebug(box *layout.Box, text *richtext.Text, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(box, text, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

// watchFiles 在输入或配置文件变化时重新生成，直到收到中断信号。
func watchFiles(opts options, r *canvasrenderer.Renderer, out *termenv.Output, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// 监听目录，编辑器保存时常以重命名替换文件
	watched := map[string]bool{}
	for _, path := range []string{opts.input, opts.configPath} {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		watched[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return err
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	logger.Info("开始监听文件变化", slog.Int("files", len(watched)))
	for {
		select {
		case <-stop:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(event.Name)
			if !watched[abs] || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			logger.Debug("文件已变化", slog.String("file", event.Name), slog.String("op", event.Op.String()))
			if err := run(opts, r, out, logger); err != nil {
				logger.Error("重新生成失败", slog.Any("error", err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("监听出错", slog.Any("error", err))
		}
	}
}
