package native

var ValidateSubprotocols = validateSubprotocols
