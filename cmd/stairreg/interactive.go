package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var errInputClosed = errors.New("input closed")

// prompter asks questions on a line-oriented input stream.
type prompter struct {
	reader *bufio.Reader
	ui     *ui
}

func newPrompter(in io.Reader, u *ui) *prompter {
	return &prompter{reader: bufio.NewReader(in), ui: u}
}

// readLine returns the trimmed next line. A final line without newline is
// still returned; errInputClosed is reported only when nothing was read.
func (p *prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", errInputClosed
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *prompter) Ask(question string) (string, error) {
	fmt.Fprintf(p.ui.out, "%s: ", question)
	return p.readLine()
}

// Confirm asks a yes/no question. An empty answer selects def.
func (p *prompter) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.ui.out, "%s [%s]: ", question, hint)
		answer, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes", "是":
			return true, nil
		case "n", "no", "否":
			return false, nil
		}
		p.ui.Warn("请输入 y 或 n")
	}
}

// interactiveAnswers is what the interactive session collects.
type interactiveAnswers struct {
	PDFPath    string
	OutputPath string
	Header     bool
}

// runInteractive asks for the PDF until an existing file is named, then
// for the output path and whether to emit the header.
func runInteractive(p *prompter, defaultOutput func(pdfPath string) string) (interactiveAnswers, error) {
	var a interactiveAnswers

	p.ui.Info("欢迎使用楼梯规范提取工具！")
	for {
		path, err := p.Ask("请输入PDF文件路径")
		if err != nil {
			return a, err
		}
		path = strings.Trim(path, `"'`)
		if info, statErr := os.Stat(path); path != "" && statErr == nil && !info.IsDir() {
			a.PDFPath = path
			break
		}
		p.ui.Error("文件不存在，请重新输入")
	}

	def := defaultOutput(a.PDFPath)
	useDefault, err := p.Confirm(fmt.Sprintf("使用默认输出路径 (%s)?", def), true)
	if err != nil {
		return a, err
	}
	if useDefault {
		a.OutputPath = def
	} else {
		for a.OutputPath == "" {
			if a.OutputPath, err = p.Ask("请输入输出文件路径"); err != nil {
				return a, err
			}
		}
	}

	if a.Header, err = p.Confirm("是否同时生成C++头文件?", false); err != nil {
		return a, err
	}
	return a, nil
}
