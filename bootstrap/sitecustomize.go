// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

// siteCustomize is the hook installed into foreign interpreters. It
// is self-contained on purpose: the target's interpreter and venv
// know nothing about this launcher, so the hook may import only the
// standard library. It decodes the policy from the transport
// variable, installs the same four guards this binary enforces in
// process, and hard-exits 2 on an uncaught violation so the exit
// code contract holds across the process boundary.
//
// The decision semantics here must stay in lockstep with the guard
// package: metadata endpoints deny under every policy with exact
// allowlist names as the only unlock, loopback opens under
// allow-localhost, domains match by substring, write-class
// filesystem calls deny under fs-readonly, reads confine to the
// realpath root, and strict imports refuse native loaders plus the
// FFI bridge modules.
const siteCustomize = `import builtins
import importlib.machinery
import json
import os
import pathlib
import re
import socket
import subprocess
import sys


class PolicyViolation(RuntimeError):
    pass


_prev_excepthook = sys.excepthook


def _excepthook(exctype, value, tb):
    if exctype is KeyboardInterrupt:
        return _prev_excepthook(exctype, value, tb)
    if exctype.__name__ == "PolicyViolation":
        sys.stderr.write("hermetic: blocked action: %s\n" % (value,))
        sys.stderr.flush()
        os._exit(2)
    return _prev_excepthook(exctype, value, tb)


sys.excepthook = _excepthook

_cfg = json.loads(os.environ.pop("HERMETIC_FLAGS_JSON", "{}"))
_trace = bool(_cfg.get("trace"))

_cred_re = re.compile(
    r"(?i)((?:password|passwd|secret|token|api_key|apikey|auth(?:orization)?)[ \t]*[=:][ \t]*)(\S+)")
_scheme_re = re.compile(r"(?i)\b(bearer|basic)[ \t]+[A-Za-z0-9+/_.\-]{8,}={0,2}")
_token_re = re.compile(r"\b[A-Za-z0-9_\-]{32,}\b")


def _redact_token(match):
    text = match.group(0)
    if any(c.isalpha() for c in text) and any(c.isdigit() for c in text):
        return "[redacted]"
    return text


def _redact(text):
    text = _cred_re.sub(lambda m: m.group(1) + "[redacted]", text)
    text = _scheme_re.sub(lambda m: m.group(1) + " [redacted]", text)
    return _token_re.sub(_redact_token, text)


def _blocked(op, detail, rule):
    detail = _redact(detail)
    if _trace:
        if detail:
            line = "[hermetic] blocked %s %s reason=%s\n" % (op, detail, rule)
        else:
            line = "[hermetic] blocked %s reason=%s\n" % (op, rule)
        sys.stderr.write(line)
        sys.stderr.flush()
    if detail:
        raise PolicyViolation("blocked %s %s reason=%s" % (op, detail, rule))
    raise PolicyViolation("blocked %s reason=%s" % (op, rule))


# Network guard. Installed under every policy so the metadata
# endpoint hardening applies even without no-network.
_META = {"169.254.169.254", "metadata.google.internal", "fd00:ec2::254"}
_LOCAL = {"127.0.0.1", "::1", "localhost", "0.0.0.0"}
_no_network = bool(_cfg.get("no_network"))
_allow_local = bool(_cfg.get("allow_localhost"))
_allow_domains = [str(d).lower() for d in _cfg.get("allow_domains") or [] if d]


def _norm_host(host):
    return str(host or "").lower().strip().lstrip("[").rstrip("]")


def _net_decision(host):
    h = _norm_host(host)
    if h in _META:
        if any(d == h for d in _allow_domains):
            return None
        return "metadata-endpoint"
    if _allow_local and h in _LOCAL:
        return None
    if any(d in h for d in _allow_domains):
        return None
    if not _no_network:
        return None
    return "no-network"


def _check_net(op, host):
    rule = _net_decision(host)
    if rule is not None:
        _blocked(op, "host=%s" % host, rule)


def _peel_host(address):
    if isinstance(address, (tuple, list)) and address:
        return address[0]
    return str(address)


_real_connect = socket.socket.connect
_real_connect_ex = socket.socket.connect_ex
_real_create_connection = socket.create_connection
_real_getaddrinfo = socket.getaddrinfo


def _guarded_connect(self, address):
    _check_net("network.connect", _peel_host(address))
    return _real_connect(self, address)


def _guarded_connect_ex(self, address):
    _check_net("network.connect", _peel_host(address))
    return _real_connect_ex(self, address)


def _guarded_create_connection(address, *args, **kwargs):
    _check_net("network.connect", _peel_host(address))
    return _real_create_connection(address, *args, **kwargs)


def _guarded_getaddrinfo(host, *args, **kwargs):
    _check_net("network.resolve", host)
    return _real_getaddrinfo(host, *args, **kwargs)


socket.socket.connect = _guarded_connect
socket.socket.connect_ex = _guarded_connect_ex
socket.create_connection = _guarded_create_connection
socket.getaddrinfo = _guarded_getaddrinfo


# Subprocess guard: spawn is binary, no allowlist.
if _cfg.get("no_subprocess"):
    def _spawn_detail(args):
        if not args:
            return ""
        first = args[0]
        if isinstance(first, (list, tuple)):
            first = first[0] if first else ""
        if isinstance(first, bytes):
            first = first.decode("utf-8", "replace")
        words = str(first).split()
        if not words:
            return ""
        return "argv0=%s" % words[0]

    def _deny_spawn(*args, **kwargs):
        _blocked("subprocess.exec", _spawn_detail(args), "no-subprocess")

    def _deny_shell(*args, **kwargs):
        _blocked("subprocess.shell", "argv0=/bin/sh", "no-subprocess")

    subprocess.Popen = _deny_spawn
    subprocess.run = _deny_spawn
    subprocess.call = _deny_spawn
    subprocess.check_call = _deny_spawn
    subprocess.check_output = _deny_spawn
    os.system = _deny_shell
    os.popen = _deny_shell
    os.execv = _deny_spawn
    os.execve = _deny_spawn
    os.posix_spawn = _deny_spawn
    try:
        import asyncio
        asyncio.create_subprocess_exec = _deny_spawn
        asyncio.create_subprocess_shell = _deny_shell
    except Exception:
        pass


# Filesystem guard: deny writes, confine reads to the realpath root.
if _cfg.get("fs_readonly"):
    _fs_root = str(_cfg.get("fs_root") or "")
    _real_open = builtins.open
    _real_os_open = os.open
    _real_path_open = pathlib.Path.open
    _WRITE_FLAGS = os.O_WRONLY | os.O_RDWR | os.O_APPEND | os.O_CREAT | os.O_TRUNC

    def _within_root(path):
        if not _fs_root:
            return True
        p = os.path.realpath(str(path))
        r = os.path.realpath(_fs_root)
        return p == r or p.startswith(r + os.sep)

    def _check_read(path):
        if not _within_root(path):
            _blocked("filesystem.read", "path=%s" % path, "fs-readonly")

    def _guarded_open(file, mode="r", *args, **kwargs):
        path = str(file)
        if any(c in str(mode) for c in "wax+"):
            _blocked("filesystem.write", "path=%s" % path, "fs-readonly")
        _check_read(path)
        return _real_open(file, mode, *args, **kwargs)

    def _guarded_path_open(self, mode="r", *args, **kwargs):
        path = str(self)
        if any(c in str(mode) for c in "wax+"):
            _blocked("filesystem.write", "path=%s" % path, "fs-readonly")
        _check_read(path)
        return _real_path_open(self, mode, *args, **kwargs)

    def _guarded_os_open(path, flags, *args, **kwargs):
        if flags & _WRITE_FLAGS:
            _blocked("filesystem.write", "path=%s" % path, "fs-readonly")
        _check_read(path)
        return _real_os_open(path, flags, *args, **kwargs)

    def _deny_remove(path="", *args, **kwargs):
        _blocked("filesystem.remove", "path=%s" % path, "fs-readonly")

    def _deny_rename(src="", dst="", *args, **kwargs):
        _blocked("filesystem.rename", "from=%s,to=%s" % (src, dst), "fs-readonly")

    def _deny_mkdir(path="", *args, **kwargs):
        _blocked("filesystem.mkdir", "path=%s" % path, "fs-readonly")

    builtins.open = _guarded_open
    pathlib.Path.open = _guarded_path_open
    os.open = _guarded_os_open
    os.remove = _deny_remove
    os.unlink = _deny_remove
    os.rmdir = _deny_remove
    os.rename = _deny_rename
    os.replace = _deny_rename
    os.mkdir = _deny_mkdir
    os.makedirs = _deny_mkdir


# Import guard: refuse native extension loads and FFI bridge modules.
if _cfg.get("strict_imports"):
    _real_ext_loader = importlib.machinery.ExtensionFileLoader
    _real_import = builtins.__import__
    _FFI = {"ctypes", "cffi"}

    class _GuardedExtensionLoader(_real_ext_loader):
        def create_module(self, spec):
            _blocked("nativeload.open", "name=%s" % spec.name, "strict-imports")

    def _guarded_import(name, globals=None, locals=None, fromlist=(), level=0):
        root = str(name).split(".", 1)[0].lower()
        if root in _FFI:
            _blocked("nativeload.import", "name=%s" % name, "strict-imports")
        return _real_import(name, globals, locals, fromlist, level)

    importlib.machinery.ExtensionFileLoader = _GuardedExtensionLoader
    builtins.__import__ = _guarded_import
`
