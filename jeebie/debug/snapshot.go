package debug

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valerio/go-jeebie-dbg/jeebie/addr"
	"github.com/valerio/go-jeebie-dbg/jeebie/cpu"
)

// TakeSnapshot handles the snapshot key for backends: the current debug view
// is written as text next to the working directory.
func TakeSnapshot(data *CompleteDebugData) {
	if data == nil {
		slog.Warn("No debug data available for snapshot")
		return
	}

	if _, err := SaveTextToDir(data, "jeebie_dbg_snapshot", ""); err != nil {
		slog.Error("Failed to save snapshot", "error", err)
	}
}

// SaveTextToDir writes the text dump of data to a timestamped file in
// directory (the working directory when empty) and returns its path.
func SaveTextToDir(data *CompleteDebugData, baseName, directory string) (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", baseName, timestamp)

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	filePath := filepath.Join(outputDir, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := WriteText(file, data); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	slog.Info("Snapshot saved", "path", filePath, "step", data.Steps, "tables", len(data.Tables))
	return filePath, nil
}

// WriteText renders data as plain text: state line, registers with changed
// fields marked, instruction, breakpoints and memory tables.
func WriteText(w io.Writer, data *CompleteDebugData) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "step %d  %s\n", data.Steps, data.DebuggerState)

	regs := make([]string, 0, len(cpu.Fields))
	for _, f := range cpu.Fields {
		mark := ""
		if data.Changed(f) {
			mark = "*"
		}
		regs = append(regs, fmt.Sprintf("%s=%s%s", f, f.Format(data.Current.Value(f)), mark))
	}
	fmt.Fprintln(bw, strings.Join(regs, " "))

	if len(data.Changes) > 0 {
		changes := make([]string, len(data.Changes))
		for i, c := range data.Changes {
			changes[i] = c.String()
		}
		fmt.Fprintf(bw, "updates: %s\n", strings.Join(changes, ", "))
	}

	in := data.Instruction
	fmt.Fprintf(bw, "instr: %s  bytes=%d cycles=%s flags=%s\n", in, in.Bytes, in.CyclesString(), FormatFlagEffects(in.Flags))
	if data.HasOperand {
		fmt.Fprintf(bw, "operand: %s\n", FormatAddress(data.OperandAddress))
	}

	if len(data.Breakpoints) > 0 {
		bps := make([]string, len(data.Breakpoints))
		for i, bp := range data.Breakpoints {
			bps[i] = fmt.Sprintf("%s:0x%04X", bp.Region, bp.Address)
			if bp.Pending {
				bps[i] += "?"
			}
		}
		fmt.Fprintf(bw, "breakpoints: %s\n", strings.Join(bps, " "))
	}

	for _, line := range data.SerialLines {
		fmt.Fprintf(bw, "serial: %s\n", line)
	}
	if data.SerialPartial != "" {
		fmt.Fprintf(bw, "serial: %s_\n", data.SerialPartial)
	}

	if data.LastError != "" {
		fmt.Fprintf(bw, "error: %s\n", data.LastError)
	}

	for _, t := range data.Tables {
		fmt.Fprintf(bw, "[%s @%s lines %d-%d]\n", t.Name, t.Anchor, t.Window.Start, t.Window.End)
		for _, l := range t.Lines {
			bw.WriteString(l.Label)
			for _, c := range l.Cells {
				bw.WriteString(formatCell(c))
			}
			bw.WriteByte('\n')
		}
	}

	return bw.Flush()
}

// FormatFlagEffects renders the flag row as "Z:- N:0 H:1 C:C".
func FormatFlagEffects(fe cpu.FlagEffects) string {
	parts := make([]string, len(cpu.FlagNames))
	for i, f := range cpu.FlagNames {
		e := fe.Get(f)
		v := string(e)
		if e == cpu.FlagDependent {
			v = string(f)
		}
		parts[i] = fmt.Sprintf("%s:%s", f, v)
	}
	return strings.Join(parts, " ")
}

// FormatAddress renders an address, naming it when it is an I/O register:
// "0xFF44 (LY)".
func FormatAddress(address uint16) string {
	if name, ok := addr.Name(address); ok {
		return fmt.Sprintf("0x%04X (%s)", address, name)
	}
	return fmt.Sprintf("0x%04X", address)
}

func formatCell(c Cell) string {
	switch c.Kind {
	case CellAnchor:
		return fmt.Sprintf(">%02X", c.Value)
	case CellOperand:
		return fmt.Sprintf("+%02X", c.Value)
	case CellBreakpoint:
		return fmt.Sprintf("*%02X", c.Value)
	}
	return fmt.Sprintf(" %02X", c.Value)
}
