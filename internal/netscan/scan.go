// Package netscan discovers file-sharing hosts and their exported shares on
// the local network. Hosts come from the browse list when it is available and
// from a direct SMB port sweep of the configured subnet when it is not.
package netscan

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/drivesave/drivesave/internal/drivemap"
	"github.com/drivesave/drivesave/internal/logging"
	"github.com/drivesave/drivesave/pkg/utils"
)

const smbPort = "445"

// dialTimeout and interfaceAddrs are injectable for tests.
var (
	dialTimeout    = net.DialTimeout
	interfaceAddrs = net.InterfaceAddrs
)

// Options configures a Scanner.
type Options struct {
	// Subnet is the CIDR swept when the browse list yields nothing.
	// Empty means derive a /24 from the local interface addresses.
	Subnet string

	// Workers bounds the number of concurrent probe dials.
	Workers int

	// ProbeTimeout bounds each individual dial.
	ProbeTimeout time.Duration
}

// Scanner enumerates sharing hosts and their disk shares.
type Scanner struct {
	runner drivemap.CommandRunner
	logger *logging.Logger
	opts   Options
}

// New creates a Scanner. Zero option fields get conservative defaults.
func New(logger *logging.Logger, runner drivemap.CommandRunner, opts Options) *Scanner {
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}
	if runner == nil {
		runner = drivemap.NewOSCommandRunner()
	}
	if opts.Workers <= 0 {
		opts.Workers = 32
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 500 * time.Millisecond
	}
	return &Scanner{runner: runner, logger: logger, opts: opts}
}

// DiscoverHosts returns the sharing hosts visible from this machine. The
// browse list is authoritative when populated; otherwise the subnet sweep
// fills in, since the browser service is frequently absent on modern networks.
func (s *Scanner) DiscoverHosts(ctx context.Context) ([]string, error) {
	output, err := s.runner.Run(ctx, "net", "view")
	if err == nil {
		if hosts := parseBrowseList(string(output)); len(hosts) > 0 {
			s.logger.Debug("Browse list returned %d host(s)", len(hosts))
			return hosts, nil
		}
	} else {
		s.logger.Debug("Browse list unavailable (%v)", err)
	}

	subnet := s.opts.Subnet
	if subnet == "" {
		subnet = localSubnet()
		if subnet == "" {
			s.logger.Debug("No sweep subnet configured and none derivable from the local interfaces")
			return nil, nil
		}
	}
	s.logger.Info("Browse list empty; sweeping %s for SMB hosts", subnet)
	return s.ProbeSubnet(ctx, subnet)
}

// localSubnet derives a sweep target from the first global unicast IPv4
// interface address. Masks wider than /24 are narrowed to the /24 around the
// local address so an unconfigured sweep stays bounded.
func localSubnet() string {
	addrs, err := interfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipnet.IP.To4()
		if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			continue
		}
		ones, _ := ipnet.Mask.Size()
		if ones < 24 {
			ones = 24
		}
		return fmt.Sprintf("%s/%d", ip.Mask(net.CIDRMask(ones, 32)), ones)
	}
	return ""
}

// ProbeSubnet sweeps every host address in cidr with a TCP dial against the
// SMB port. Results keep address order regardless of which probe finishes
// first: each worker writes only its own index's slot.
func (s *Scanner) ProbeSubnet(ctx context.Context, cidr string) ([]string, error) {
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("parse scan subnet %q: %w", cidr, err)
	}
	addrs := hostAddrs(ipnet)
	if len(addrs) == 0 {
		return nil, nil
	}

	slots := make([]string, len(addrs))
	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := s.opts.Workers
	if workers > len(addrs) {
		workers = len(addrs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				conn, err := dialTimeout("tcp", net.JoinHostPort(addrs[i], smbPort), s.opts.ProbeTimeout)
				if err != nil {
					continue
				}
				_ = conn.Close()
				slots[i] = addrs[i]
			}
		}()
	}
	for i := range addrs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var hosts []string
	for _, addr := range slots {
		if addr != "" {
			hosts = append(hosts, addr)
		}
	}
	s.logger.Debug("Subnet sweep found %d SMB host(s) out of %d probed", len(hosts), len(addrs))
	return hosts, ctx.Err()
}

// ListShares returns the disk shares exported by host, excluding
// administrative shares (names ending in $).
func (s *Scanner) ListShares(ctx context.Context, host string) ([]string, error) {
	output, err := s.runner.Run(ctx, "net", "view", `\\`+host)
	if err != nil {
		return nil, fmt.Errorf("list shares on %s: %s", host, firstNonEmptyLine(string(output), err))
	}
	return parseShareTable(string(output)), nil
}

// ScanShares walks every discovered host and returns its disk shares as
// unmounted mapping records with derived descriptions. Hosts that refuse the
// share enumeration are logged and skipped.
func (s *Scanner) ScanShares(ctx context.Context) (drivemap.MappingSet, error) {
	hosts, err := s.DiscoverHosts(ctx)
	if err != nil {
		return nil, err
	}

	set := drivemap.MappingSet{}
	for _, host := range hosts {
		if ctx.Err() != nil {
			return set, ctx.Err()
		}
		shares, err := s.ListShares(ctx, host)
		if err != nil {
			s.logger.Warning("Skipping %s: %v", host, err)
			continue
		}
		for _, share := range shares {
			remote := `\\` + host + `\` + share
			set = append(set, drivemap.MappingRecord{
				RemotePath:  remote,
				Description: drivemap.DeriveLabel(remote),
			})
		}
	}
	return set, nil
}

// parseBrowseList extracts host names from `net view` output. Hosts appear as
// \\NAME rows, optionally followed by a remark.
func parseBrowseList(output string) []string {
	var hosts []string
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(strings.TrimRight(line, "\r"))
		if !strings.HasPrefix(trimmed, `\\`) {
			continue
		}
		fields := strings.Fields(trimmed)
		hosts = append(hosts, strings.TrimPrefix(fields[0], `\\`))
	}
	sort.Strings(hosts)
	return hosts
}

// parseShareTable extracts disk share names from `net view \\host` output.
// The table lists one share per row with its type in the second column; rows
// are split on the table's multi-space gaps so share names with embedded
// spaces stay whole.
func parseShareTable(output string) []string {
	var shares []string
	inTable := false
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		stripped := strings.TrimSpace(trimmed)
		if strings.HasPrefix(stripped, "---") {
			inTable = true
			continue
		}
		if !inTable || stripped == "" || strings.HasPrefix(stripped, "The command") {
			continue
		}
		cols := utils.SplitColumns(stripped)
		if len(cols) < 2 || !strings.EqualFold(cols[1], "Disk") {
			continue
		}
		name := cols[0]
		if strings.HasSuffix(name, "$") {
			continue
		}
		shares = append(shares, name)
	}
	return shares
}

// hostAddrs expands an IPv4 network into its host addresses, excluding the
// network and broadcast addresses.
func hostAddrs(ipnet *net.IPNet) []string {
	ip := ipnet.IP.To4()
	if ip == nil {
		return nil
	}
	ones, bits := ipnet.Mask.Size()
	if bits != 32 || ones > 30 {
		return nil
	}

	base := uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
	size := uint32(1) << (32 - ones)

	addrs := make([]string, 0, size-2)
	for off := uint32(1); off < size-1; off++ {
		v := base + off
		addrs = append(addrs, fmt.Sprintf("%d.%d.%d.%d", byte(v>>24), byte(v>>16), byte(v>>8), byte(v)))
	}
	return addrs
}

func firstNonEmptyLine(output string, fallback error) string {
	for _, line := range strings.Split(output, "\n") {
		if trimmed := strings.TrimSpace(strings.TrimRight(line, "\r")); trimmed != "" {
			return trimmed
		}
	}
	return fallback.Error()
}
