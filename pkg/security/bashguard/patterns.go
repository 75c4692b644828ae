// Copyright 2026 The Agentrun Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bashguard

import "regexp"

type dangerousPattern struct {
	re    *regexp.Regexp
	label string
}

// dangerousPatterns is a table of string-level regexes that flag a
// command as dangerous regardless of how its AST parses — patterns
// like fork bombs and reverse shells are easier to describe as text
// than as a grammar rule.
var dangerousPatterns = []dangerousPattern{
	{regexp.MustCompile(`rm\s+(-[rfRPd]+\s+)*/$`), "rm root"},
	{regexp.MustCompile(`rm\s+(-[rfRPd]+\s+)*/\*`), "rm /*"},
	{regexp.MustCompile(`rm\s+(-[rfRPd]+\s+)*\./\*`), "rm ./*"},
	{regexp.MustCompile(`rm\s+(-[rfRPd]+\s+)*\.\./`), "rm ../"},
	{regexp.MustCompile(`rm\s+(-[rfRPd]+\s+)*~/?`), "rm home"},
	{regexp.MustCompile(`rm\s+(-[rfRPd]+\s+)*\.\s*$`), "rm ."},
	{regexp.MustCompile(`rm\s+(-[rfRPd]+\s+)*/\{`), "rm brace expansion"},
	{regexp.MustCompile(`\b(sudo|doas)\s+rm\b`), "privileged rm"},
	{regexp.MustCompile(`\bfind\s+/\s+.*-delete\b`), "find / -delete"},
	{regexp.MustCompile(`\bfind\s+/\s+.*-exec\s+rm\b`), "find / -exec rm"},
	{regexp.MustCompile(`dd\s+.*if\s*=\s*/dev/zero`), "dd zero"},
	{regexp.MustCompile(`dd\s+.*of\s*=\s*/dev/[sh]d`), "dd disk"},
	{regexp.MustCompile(`\bmkfs(\.[a-z0-9]+)?\s`), "mkfs"},
	{regexp.MustCompile(`>\s*/dev/sd[a-z]`), "overwrite disk"},
	{regexp.MustCompile(`\bfdisk\s+-[lw]`), "fdisk"},
	{regexp.MustCompile(`\bparted\s`), "parted"},
	{regexp.MustCompile(`\bwipefs\b`), "wipefs"},
	{regexp.MustCompile(`shred\s+.*/dev/`), "shred device"},
	{regexp.MustCompile(`shred\s+(-[a-z]+\s+)*/$`), "shred root"},
	{regexp.MustCompile(`\bsrm\b`), "secure-delete"},
	{regexp.MustCompile(`:\s*\(\s*\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;\s*:`), "fork bomb"},
	{regexp.MustCompile(`while\s+true\s*;\s*do\s*:\s*done`), "infinite loop"},
	{regexp.MustCompile(`\bpkexec\b`), "pkexec"},
	{regexp.MustCompile(`\bsu\s+-(\s|$|;|\|)`), "su root"},
	{regexp.MustCompile(`\bsu\s+root\b`), "su root explicit"},
	{regexp.MustCompile(`\bdoas\s+-s\b`), "doas shell"},
	{regexp.MustCompile(`\bshutdown\b`), "shutdown"},
	{regexp.MustCompile(`(^|[^a-z])reboot\b`), "reboot"},
	{regexp.MustCompile(`\binit\s+[06]\b`), "init halt"},
	{regexp.MustCompile(`\bsystemctl\s+(halt|poweroff|reboot)\b`), "systemctl power"},
	{regexp.MustCompile(`\bhalt\b`), "halt"},
	{regexp.MustCompile(`\bpoweroff\b`), "poweroff"},
	{regexp.MustCompile(`chmod\s+(-[a-zA-Z]+\s+)*[0-7]*[67][0-7]*\s+/`), "chmod world-writable"},
	{regexp.MustCompile(`chown\s+.*\s+/$`), "chown root"},
	{regexp.MustCompile(`\bchattr\s+\+i\s+/`), "chattr immutable"},
	{regexp.MustCompile(`\biptables\s+-F`), "iptables flush"},
	{regexp.MustCompile(`\bufw\s+disable`), "ufw disable"},
	{regexp.MustCompile(`\bfirewall-cmd\s+.*--panic-on`), "firewall panic"},
	{regexp.MustCompile(`(wget|curl)\s+[^|]*\|\s*(ba)?sh\b`), "remote exec"},
	{regexp.MustCompile(`\beval\s+.*\$\(`), "eval subshell"},
	{regexp.MustCompile(`\bkillall\s+-9\s+(init|systemd)`), "kill init"},
	{regexp.MustCompile(`\bkill\s+-9\s+-1\b`), "kill all"},
	{regexp.MustCompile(`\bpkill\s+-9\s+-1\b`), "pkill all"},
	{regexp.MustCompile(`history\s+-[cd]`), "history clear"},
	{regexp.MustCompile(`export\s+HISTFILE\s*=\s*/dev/null`), "disable history"},
	{regexp.MustCompile(`\bcrontab\s+-r\b`), "crontab remove"},
	{regexp.MustCompile(`\bat\s+-d\b`), "at remove"},
	{regexp.MustCompile(`\bcryptsetup\s+luksFormat`), "luks format"},
	{regexp.MustCompile(`\bnmap\s+-sS`), "nmap syn scan"},
	{regexp.MustCompile(`bash\s+-i\s*>?\s*&\s*/dev/tcp/`), "bash reverse shell"},
	{regexp.MustCompile(`exec\s+\d+<>/dev/tcp/`), "exec fd reverse shell"},
	{regexp.MustCompile(`exec\s+\d+<&\d+`), "exec fd redirect"},
	{regexp.MustCompile(`\bnc\s+(-[a-z]+\s+)*-e\s+/bin/(ba)?sh`), "nc reverse shell"},
	{regexp.MustCompile(`python[23]?\s+-c\s+["']import\s+(socket|pty)`), "python reverse shell"},
	{regexp.MustCompile(`perl\s+-e\s+["'].*socket.*exec`), "perl reverse shell"},
	{regexp.MustCompile(`ruby\s+-rsocket\s+-e`), "ruby reverse shell"},
	{regexp.MustCompile(`php\s+-r\s+["'].*fsockopen`), "php reverse shell"},
	{regexp.MustCompile(`\bmkfifo\s+.*\|\s*(nc|ncat)\b`), "fifo reverse shell"},
	{regexp.MustCompile(`\bsocat\s+.*exec:`), "socat exec"},
	{regexp.MustCompile(`\binsmod\s`), "insmod"},
	{regexp.MustCompile(`\bmodprobe\s`), "modprobe"},
	{regexp.MustCompile(`\brmmod\s`), "rmmod"},
	{regexp.MustCompile(`\bnsenter\s`), "nsenter"},
	{regexp.MustCompile(`\bunshare\s+.*--mount`), "unshare mount"},
	{regexp.MustCompile(`mount\s+-t\s+proc\b`), "mount proc"},
	{regexp.MustCompile(`mount\s+--bind\s+/`), "mount bind root"},
	{regexp.MustCompile(`\bsetenforce\s+0`), "selinux disable"},
	{regexp.MustCompile(`\baa-disable\b`), "apparmor disable"},
	{regexp.MustCompile(`\baa-teardown\b`), "apparmor teardown"},
	{regexp.MustCompile(`\bgcore\s`), "gcore dump"},
	{regexp.MustCompile(`cat\s+/proc/\d+/mem`), "proc mem read"},
	{regexp.MustCompile(`base64\s+.*\|\s*(curl|wget|nc)\b`), "base64 exfil"},
	{regexp.MustCompile(`tar\s+[^|]*\|\s*(nc|curl|wget)\b`), "tar exfil"},
	{regexp.MustCompile(`\bxargs\s+(-\S+\s+)*rm\s+-rf`), "xargs rm -rf"},
	{regexp.MustCompile(`\bchmod\s+[ugo]*\+s\b`), "chmod setuid/setgid"},
	{regexp.MustCompile(`\bchmod\s+[0-7]*[4-7][0-7]{2}\b`), "chmod suid bits"},
	{regexp.MustCompile(`\bchroot\s`), "chroot"},
	{regexp.MustCompile(`\bmount\s+--bind\b`), "mount bind"},
	{regexp.MustCompile(`\bmount\s+-o\s+\S*bind`), "mount -o bind"},
	{regexp.MustCompile(`\bmount\s+-t\s+overlay\b`), "mount overlay"},
	{regexp.MustCompile(`\bumount\s+-l\b`), "lazy umount"},
	{regexp.MustCompile(`\biptables\s+-P\s+\S+\s+ACCEPT`), "iptables default accept"},
	{regexp.MustCompile(`\bufw\s+default\s+allow`), "ufw default allow"},
	{regexp.MustCompile(`\bnft\s+flush\s+ruleset`), "nft flush"},
	{regexp.MustCompile(`\bsysctl\s+-w\b`), "sysctl write"},
	{regexp.MustCompile(`>\s*/proc/sys/`), "proc sys write"},
	{regexp.MustCompile(`\bstrace\s+-p\b`), "strace attach"},
	{regexp.MustCompile(`\bltrace\s+-p\b`), "ltrace attach"},
	{regexp.MustCompile(`\bptrace\b`), "ptrace"},
	{regexp.MustCompile(`\bulimit\s+-[nu]\s*0\b`), "ulimit zero"},
	{regexp.MustCompile(`\bsetcap\b`), "setcap"},
	{regexp.MustCompile(`\bcapsh\b`), "capsh"},
	{regexp.MustCompile(`\bkexec\b`), "kexec"},
	{regexp.MustCompile(`\bpivot_root\b`), "pivot_root"},
	{regexp.MustCompile(`\bswapoff\s+-a\b`), "swapoff all"},
	{regexp.MustCompile(`\$'\\x[0-9a-fA-F]`), "hex encoded command"},
	{regexp.MustCompile(`\bbase64\s+(-d|--decode)\b`), "base64 decode"},
	{regexp.MustCompile(`\bxxd\s+-r\b`), "hex decode"},
	{regexp.MustCompile(`\bprintf\s+['"]\\x[0-9a-fA-F]`), "printf hex encode"},
	{regexp.MustCompile(`\brm\s+--recursive\b`), "rm --recursive"},
	{regexp.MustCompile(`\brm\s+.*--no-preserve-root\b`), "rm --no-preserve-root"},
	{regexp.MustCompile(`\bchmod\s+[augo]*[+-][rwxst]+\s+/`), "chmod symbolic system path"},
	{regexp.MustCompile(`\bfind\s+.*-exec\s+shred\b`), "find -exec shred"},
}

// defaultBlockedCommands mirrors the network-fetch tool set that a
// strict policy refuses to let a command invoke directly.
func defaultBlockedCommands() map[string]struct{} {
	names := []string{"curl", "wget", "nc", "ncat", "netcat", "telnet", "ftp", "sftp", "scp", "rsync"}
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}
