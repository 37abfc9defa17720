package system

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// statsReader answers system information queries. Readings come from
// /proc and /sys, so unsupported hosts degrade to "unavailable"
// replies instead of errors.
type statsReader struct {
	procStat    string
	procMeminfo string
	powerSupply string
	diskRoot    string
	probeAddr   string
}

func newStatsReader() *statsReader {
	return &statsReader{
		procStat:    "/proc/stat",
		procMeminfo: "/proc/meminfo",
		powerSupply: "/sys/class/power_supply",
		diskRoot:    "/",
		probeAddr:   "8.8.8.8:53",
	}
}

// CPUUsage samples /proc/stat twice and reports busy time.
func (s *statsReader) CPUUsage() string {
	idle1, total1, err := s.cpuTimes()
	if err != nil {
		return "CPU usage information is unavailable."
	}
	time.Sleep(200 * time.Millisecond)
	idle2, total2, err := s.cpuTimes()
	if err != nil || total2 == total1 {
		return "CPU usage information is unavailable."
	}

	busy := 1 - float64(idle2-idle1)/float64(total2-total1)
	return fmt.Sprintf("CPU usage is %.1f percent.", busy*100)
}

func (s *statsReader) cpuTimes() (idle, total uint64, err error) {
	f, err := os.Open(s.procStat)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 || fields[0] != "cpu" {
			continue
		}
		for i, field := range fields[1:] {
			v, perr := strconv.ParseUint(field, 10, 64)
			if perr != nil {
				return 0, 0, perr
			}
			total += v
			if i == 3 { // idle column
				idle = v
			}
		}
		return idle, total, nil
	}
	return 0, 0, fmt.Errorf("no cpu line in %s", s.procStat)
}

// RAMUsage reports used/total memory from /proc/meminfo.
func (s *statsReader) RAMUsage() string {
	f, err := os.Open(s.procMeminfo)
	if err != nil {
		return "Memory information is unavailable."
	}
	defer f.Close()

	var totalKB, availKB uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		v, _ := strconv.ParseUint(fields[1], 10, 64)
		switch fields[0] {
		case "MemTotal:":
			totalKB = v
		case "MemAvailable:":
			availKB = v
		}
	}
	if totalKB == 0 {
		return "Memory information is unavailable."
	}

	usedGB := float64(totalKB-availKB) * 1024 / 1e9
	totalGB := float64(totalKB) * 1024 / 1e9
	return fmt.Sprintf("You are using %.2f GB out of %.2f GB.", usedGB, totalGB)
}

// BatteryStatus reads the first battery under /sys/class/power_supply.
func (s *statsReader) BatteryStatus() string {
	entries, err := os.ReadDir(s.powerSupply)
	if err != nil {
		return "Battery info unavailable."
	}
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "BAT") {
			continue
		}
		raw, err := os.ReadFile(s.powerSupply + "/" + entry.Name() + "/capacity")
		if err != nil {
			continue
		}
		pct, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		if err != nil {
			continue
		}
		return fmt.Sprintf("Battery level is %d percent.", pct)
	}
	return "Battery info unavailable."
}

// DiskSpace reports free space on the root filesystem.
func (s *statsReader) DiskSpace() string {
	var st syscall.Statfs_t
	if err := syscall.Statfs(s.diskRoot, &st); err != nil {
		return "Disk information is unavailable."
	}
	free := float64(st.Bavail) * float64(st.Bsize) / 1e9
	total := float64(st.Blocks) * float64(st.Bsize) / 1e9
	return fmt.Sprintf("%.2f GB free out of %.2f GB.", free, total)
}

// NetworkStatus probes a public resolver to check connectivity.
func (s *statsReader) NetworkStatus() string {
	conn, err := net.DialTimeout("tcp", s.probeAddr, 2*time.Second)
	if err != nil {
		return "No internet connection."
	}
	conn.Close()
	return "Internet is connected."
}

// GPUUsage shells out to nvidia-smi when present.
func (s *statsReader) GPUUsage(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=utilization.gpu", "--format=csv,noheader,nounits").Output()
	if err != nil {
		return "GPU usage information is unavailable."
	}
	return fmt.Sprintf("GPU usage is %s percent.", strings.TrimSpace(string(out)))
}
